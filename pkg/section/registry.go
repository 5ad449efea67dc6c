package section

import (
	"fmt"
)

// Registry resolves section ids to their definitions and runs validation.
// It is looked up once per save; definitions are never mutated at runtime.
type Registry struct {
	order    []string
	sections map[string]Definition
}

// NewRegistry builds a Registry preserving the given section order. Section
// ids must be unique and non-empty.
func NewRegistry(defs ...Definition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("section: at least one section is required")
	}

	r := &Registry{
		order:    make([]string, 0, len(defs)),
		sections: make(map[string]Definition, len(defs)),
	}
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("section: section id is required")
		}
		if _, exists := r.sections[def.ID]; exists {
			return nil, fmt.Errorf("section: duplicate section id %q", def.ID)
		}
		r.order = append(r.order, def.ID)
		r.sections[def.ID] = def
	}
	return r, nil
}

// Order returns the fixed section ordering.
func (r *Registry) Order() []string {
	return append([]string(nil), r.order...)
}

// Section returns the definition registered under id.
func (r *Registry) Section(id string) (Definition, bool) {
	def, ok := r.sections[id]
	return def, ok
}

// Index returns the position of id within the section order, or -1.
func (r *Registry) Index(id string) int {
	for i, candidate := range r.order {
		if candidate == id {
			return i
		}
	}
	return -1
}

// Len reports the number of registered sections.
func (r *Registry) Len() int {
	return len(r.order)
}

// Validate runs the section's validation pass against values.
func (r *Registry) Validate(sectionID string, values map[string]any) (Result, error) {
	def, ok := r.sections[sectionID]
	if !ok {
		return Result{}, fmt.Errorf("section: unknown section %q", sectionID)
	}
	return def.Validate(values), nil
}
