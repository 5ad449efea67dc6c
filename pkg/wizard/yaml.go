package wizard

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/vendra/formwizard/pkg/fieldmap"
	"github.com/vendra/formwizard/pkg/section"
)

// FileConfig is a wizard definition plus its field mapping, as loaded from a
// declarative YAML document. Vendor-console flows ship as data files:
//
//	fields:
//	  companyName: {server: company_name}
//	  endUseMarket: {server: end_use_market, kind: list}
//	sections:
//	  - id: company
//	    name: Company details
//	    fields: [companyName]
//	    required: [companyName]
//	    when:
//	      - field: controlledItems
//	        equals: "yes"
//	        require: [endUseMarket]
//	    patterns:
//	      - field: taxID
//	        pattern: "^[A-Z]{2}\\d{8}$"
//	        message: taxID must look like XX12345678
type FileConfig struct {
	Definition Definition
	Mapping    *fieldmap.Mapping
}

type yamlDocument struct {
	Fields   map[string]yamlField `yaml:"fields"`
	Sections []yamlSection        `yaml:"sections"`
}

type yamlField struct {
	Server string `yaml:"server"`
	Kind   string `yaml:"kind"`
}

type yamlSection struct {
	ID             string        `yaml:"id"`
	Name           string        `yaml:"name"`
	Fields         []string      `yaml:"fields"`
	Required       []string      `yaml:"required"`
	When           []yamlRule    `yaml:"when"`
	Patterns       []yamlPattern `yaml:"patterns"`
	KeepEmptyLists bool          `yaml:"keepEmptyLists"`
}

type yamlRule struct {
	Field   string   `yaml:"field"`
	Equals  string   `yaml:"equals"`
	Require []string `yaml:"require"`
}

type yamlPattern struct {
	Field   string `yaml:"field"`
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
}

var fieldKinds = map[string]fieldmap.Kind{
	"":         fieldmap.KindString,
	"string":   fieldmap.KindString,
	"number":   fieldmap.KindNumber,
	"bool":     fieldmap.KindBool,
	"tristate": fieldmap.KindTriState,
	"list":     fieldmap.KindList,
	"date":     fieldmap.KindDate,
	"file":     fieldmap.KindFile,
}

// ParseYAML decodes a declarative wizard document into a definition and its
// field mapping.
func ParseYAML(data []byte) (FileConfig, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return FileConfig{}, fmt.Errorf("wizard: parse yaml: %w", err)
	}
	if len(doc.Sections) == 0 {
		return FileConfig{}, fmt.Errorf("wizard: yaml document declares no sections")
	}

	specs := make(map[string]fieldmap.Spec, len(doc.Fields))
	for client, field := range doc.Fields {
		kind, ok := fieldKinds[field.Kind]
		if !ok {
			return FileConfig{}, fmt.Errorf("wizard: field %q has unknown kind %q", client, field.Kind)
		}
		specs[client] = fieldmap.Spec{Server: field.Server, Kind: kind}
	}
	mapping, err := fieldmap.New(specs)
	if err != nil {
		return FileConfig{}, err
	}

	sections := make([]section.Definition, 0, len(doc.Sections))
	for _, raw := range doc.Sections {
		def := section.Definition{
			ID:                 raw.ID,
			DisplayName:        raw.Name,
			FieldNames:         raw.Fields,
			RequiredFieldNames: raw.Required,
			KeepEmptyLists:     raw.KeepEmptyLists,
		}
		for _, rule := range raw.When {
			def.ConditionalRules = append(def.ConditionalRules, section.ConditionalRule{
				WhenField:         rule.Field,
				WhenEquals:        rule.Equals,
				ThenRequireFields: rule.Require,
			})
		}
		for _, pattern := range raw.Patterns {
			re, err := regexp.Compile(pattern.Pattern)
			if err != nil {
				return FileConfig{}, fmt.Errorf("wizard: section %q pattern for %q: %w", raw.ID, pattern.Field, err)
			}
			if def.FormatRules == nil {
				def.FormatRules = make(map[string][]section.RuleFunc)
			}
			message := pattern.Message
			if message == "" {
				message = fmt.Sprintf("%s has an invalid format", pattern.Field)
			}
			def.FormatRules[pattern.Field] = append(def.FormatRules[pattern.Field], section.Pattern(re, message))
		}
		sections = append(sections, def)
	}

	definition, err := NewDefinition(sections...)
	if err != nil {
		return FileConfig{}, err
	}
	return FileConfig{Definition: definition, Mapping: mapping}, nil
}
