// Package section declares wizard sections and validates form values against
// them. Validation is a pure function of the section definition and the
// in-memory values passed in; previously persisted server state never
// participates.
package section

import (
	"fmt"
	"strings"

	"github.com/vendra/formwizard/pkg/fieldmap"
)

// ConditionalRule makes extra fields required when a controlling field holds
// a given value. The comparison is loose: the current value is coerced to a
// string before matching, so "yes", true, and a select option all compare the
// way the UI presents them.
type ConditionalRule struct {
	WhenField         string
	WhenEquals        string
	ThenRequireFields []string
}

// RuleFunc is a format predicate for a single field value. It returns an
// empty string when the value passes, or the error message to surface.
type RuleFunc func(value any) string

// Definition describes one wizard section: the fields it shows, which of
// them are always required, rules that make more of them required, and
// per-field format predicates.
type Definition struct {
	ID                 string
	DisplayName        string
	FieldNames         []string
	RequiredFieldNames []string
	ConditionalRules   []ConditionalRule
	FormatRules        map[string][]RuleFunc

	// KeepEmptyLists makes saves of this section send empty lists instead of
	// pruning them, so clearing a multi-select deletes the stored value.
	KeepEmptyLists bool
}

// Result is the outcome of one validation pass. A fresh Result is produced on
// every call; FieldErrors holds the first failing message per field.
type Result struct {
	Valid       bool
	FieldErrors map[string]string
}

// IsEmpty reports whether a value counts as unset for required-field checks:
// nil, blank strings, empty lists, and incomplete composite dates are empty.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case fieldmap.CompositeDate:
		return !v.Complete()
	default:
		return false
	}
}

// Validate checks values against this section's required set, conditional
// rules, and format predicates. All fields are checked independently; within
// one field the first failure wins and later predicates are skipped.
func (d Definition) Validate(values map[string]any) Result {
	required := make(map[string]bool, len(d.RequiredFieldNames))
	var requiredOrder []string
	requireField := func(name string) {
		if !required[name] {
			required[name] = true
			requiredOrder = append(requiredOrder, name)
		}
	}
	for _, name := range d.RequiredFieldNames {
		requireField(name)
	}
	for _, rule := range d.ConditionalRules {
		if !ruleMatches(values[rule.WhenField], rule.WhenEquals) {
			continue
		}
		for _, name := range rule.ThenRequireFields {
			requireField(name)
		}
	}

	errors := make(map[string]string)
	checked := make(map[string]bool, len(d.FieldNames))
	checkField := func(name string) {
		if checked[name] {
			return
		}
		checked[name] = true

		value, present := values[name]
		empty := !present || IsEmpty(value)

		if required[name] && empty {
			errors[name] = fmt.Sprintf("%s is required", name)
			return
		}
		if empty {
			return
		}
		for _, rule := range d.FormatRules[name] {
			if msg := rule(value); msg != "" {
				errors[name] = msg
				break
			}
		}
	}

	for _, name := range d.FieldNames {
		checkField(name)
	}
	// Required fields live outside FieldNames when another section owns their
	// display; they still gate this section's save.
	for _, name := range requiredOrder {
		checkField(name)
	}

	if len(errors) > 0 {
		return Result{Valid: false, FieldErrors: errors}
	}
	return Result{Valid: true, FieldErrors: map[string]string{}}
}

// ruleMatches compares the current value of a controlling field against the
// rule literal. Hydration turns tri-state answers into native booleans, so a
// rule written as "yes" must still fire against true.
func ruleMatches(value any, want string) bool {
	if coerceString(value) == want {
		return true
	}
	got, ok := triBool(value)
	if !ok {
		return false
	}
	wanted, ok := triBoolString(want)
	if !ok {
		return false
	}
	return got == wanted
}

func triBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		return triBoolString(v)
	default:
		return false, false
	}
}

func triBoolString(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true":
		return true, true
	case "no", "false":
		return false, true
	default:
		return false, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}
