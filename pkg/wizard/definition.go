// Package wizard drives a progressive multi-section form session: one section
// is validated and persisted at a time, later sections unlock only after
// earlier ones succeed, and hydrating from an existing entity reopens every
// section for editing.
package wizard

import (
	"context"
	"fmt"

	"github.com/vendra/formwizard/pkg/section"
)

// Definition is the static description of a wizard: its ordered sections.
// Order is fixed at definition time. A field may appear in more than one
// section; the field list only scopes what a section validates and submits.
type Definition struct {
	Sections []section.Definition
}

// NewDefinition validates the section list up front so sessions can assume a
// well-formed registry.
func NewDefinition(sections ...section.Definition) (Definition, error) {
	if _, err := section.NewRegistry(sections...); err != nil {
		return Definition{}, fmt.Errorf("wizard: %w", err)
	}
	return Definition{Sections: sections}, nil
}

// Store is the external persistence collaborator for the entity being built.
// The first successful section save creates the entity; every later save
// updates it.
type Store interface {
	CreateEntity(ctx context.Context, payload map[string]any) (string, error)
	UpdateEntity(ctx context.Context, id string, payload map[string]any) error
	FetchEntity(ctx context.Context, id string) (map[string]any, error)
}
