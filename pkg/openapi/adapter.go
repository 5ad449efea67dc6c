// Package openapi derives wizard definitions from an OpenAPI document. The
// request body schema of one operation supplies the field inventory: property
// names become server field names, required properties become required
// fields, and schema constraints (pattern, numeric bounds) become format
// rules. Callers group the fields into sections; without groups the whole
// operation becomes a single-section wizard.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/vendra/formwizard/pkg/fieldmap"
	"github.com/vendra/formwizard/pkg/section"
	"github.com/vendra/formwizard/pkg/wizard"
)

// Section assigns a subset of the operation's fields (by client name) to one
// wizard section, in display order.
type Section struct {
	ID          string
	DisplayName string
	Fields      []string
	Required    []string // extra required fields beyond the schema's required list
}

// DefinitionFromDocument loads an OpenAPI document and builds a wizard
// definition plus field mapping from the named operation's request body.
func DefinitionFromDocument(ctx context.Context, data []byte, operationID string, groups ...Section) (wizard.Definition, *fieldmap.Mapping, error) {
	if err := ctx.Err(); err != nil {
		return wizard.Definition{}, nil, err
	}
	if len(data) == 0 {
		return wizard.Definition{}, nil, errors.New("openapi: document payload is empty")
	}
	if operationID == "" {
		return wizard.Definition{}, nil, errors.New("openapi: operation id is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return wizard.Definition{}, nil, fmt.Errorf("openapi: load document: %w", err)
	}

	op := findOperation(doc, operationID)
	if op == nil {
		return wizard.Definition{}, nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}

	schema := requestSchema(op)
	if schema == nil || len(schema.Properties) == 0 {
		return wizard.Definition{}, nil, fmt.Errorf("openapi: operation %q has no request body properties", operationID)
	}

	fields, err := collectFields(schema)
	if err != nil {
		return wizard.Definition{}, nil, err
	}

	mapping, err := fields.mapping()
	if err != nil {
		return wizard.Definition{}, nil, err
	}

	sections, err := fields.sections(operationID, op.Summary, groups)
	if err != nil {
		return wizard.Definition{}, nil, err
	}

	def, err := wizard.NewDefinition(sections...)
	if err != nil {
		return wizard.Definition{}, nil, err
	}
	return def, mapping, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

type fieldInfo struct {
	client   string
	server   string
	kind     fieldmap.Kind
	required bool
	rules    []section.RuleFunc
}

type fieldSet struct {
	byClient map[string]fieldInfo
	ordered  []string // client names, sorted for deterministic defaults
}

func collectFields(schema *openapi3.Schema) (*fieldSet, error) {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	set := &fieldSet{byClient: make(map[string]fieldInfo, len(schema.Properties))}
	for server, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		client := clientName(server)
		if prior, exists := set.byClient[client]; exists {
			return nil, fmt.Errorf("openapi: properties %q and %q collide on client name %q", prior.server, server, client)
		}

		set.byClient[client] = fieldInfo{
			client:   client,
			server:   server,
			kind:     kindOf(prop),
			required: required[server],
			rules:    constraintRules(client, prop),
		}
		set.ordered = append(set.ordered, client)
	}
	sort.Strings(set.ordered)
	return set, nil
}

func (s *fieldSet) mapping() (*fieldmap.Mapping, error) {
	specs := make(map[string]fieldmap.Spec, len(s.byClient))
	for client, info := range s.byClient {
		specs[client] = fieldmap.Spec{Server: info.server, Kind: info.kind}
	}
	return fieldmap.New(specs)
}

func (s *fieldSet) sections(operationID, summary string, groups []Section) ([]section.Definition, error) {
	if len(groups) == 0 {
		displayName := summary
		if displayName == "" {
			displayName = operationID
		}
		groups = []Section{{ID: operationID, DisplayName: displayName, Fields: s.ordered}}
	}

	out := make([]section.Definition, 0, len(groups))
	for _, group := range groups {
		def := section.Definition{
			ID:          group.ID,
			DisplayName: group.DisplayName,
		}
		for _, client := range group.Fields {
			info, ok := s.byClient[client]
			if !ok {
				return nil, fmt.Errorf("openapi: section %q references unknown field %q", group.ID, client)
			}
			def.FieldNames = append(def.FieldNames, client)
			if info.required {
				def.RequiredFieldNames = append(def.RequiredFieldNames, client)
			}
			if len(info.rules) > 0 {
				if def.FormatRules == nil {
					def.FormatRules = make(map[string][]section.RuleFunc)
				}
				def.FormatRules[client] = info.rules
			}
		}
		for _, extra := range group.Required {
			if _, ok := s.byClient[extra]; !ok {
				return nil, fmt.Errorf("openapi: section %q requires unknown field %q", group.ID, extra)
			}
			if !contains(def.RequiredFieldNames, extra) {
				def.RequiredFieldNames = append(def.RequiredFieldNames, extra)
			}
		}
		out = append(out, def)
	}
	return out, nil
}

func kindOf(prop *openapi3.Schema) fieldmap.Kind {
	switch schemaType(prop) {
	case "array":
		return fieldmap.KindList
	case "number", "integer":
		return fieldmap.KindNumber
	case "boolean":
		return fieldmap.KindBool
	case "string":
		switch prop.Format {
		case "date":
			return fieldmap.KindDate
		case "binary":
			return fieldmap.KindFile
		default:
			return fieldmap.KindString
		}
	default:
		return fieldmap.KindString
	}
}

func schemaType(prop *openapi3.Schema) string {
	if prop.Type == nil {
		return ""
	}
	values := prop.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func constraintRules(client string, prop *openapi3.Schema) []section.RuleFunc {
	var rules []section.RuleFunc
	if prop.Pattern != "" {
		if re, err := regexp.Compile(prop.Pattern); err == nil {
			rules = append(rules, section.Pattern(re, fmt.Sprintf("%s has an invalid format", client)))
		}
	}
	if prop.Min != nil || prop.Max != nil {
		lower := math.Inf(-1)
		upper := math.Inf(1)
		if prop.Min != nil {
			lower = *prop.Min
		}
		if prop.Max != nil {
			upper = *prop.Max
		}
		rules = append(rules, section.Range(lower, upper, fmt.Sprintf("%s is out of range", client)))
	}
	return rules
}

// clientName converts a snake_case server property into the camelCase client
// namespace; names without separators pass through.
func clientName(server string) string {
	if !strings.ContainsAny(server, "_-") {
		return server
	}
	parts := strings.FieldsFunc(server, func(r rune) bool { return r == '_' || r == '-' })
	if len(parts) == 0 {
		return server
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, part := range parts[1:] {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	return b.String()
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
