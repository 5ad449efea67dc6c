// Package formwizard drives progressive multi-section form flows: sections
// unlock in order, each save validates and persists, and file fields are
// uploaded before the section payload is written. The subpackages hold the
// building blocks; this package is the convenience surface over them.
package formwizard

import (
	"github.com/vendra/formwizard/pkg/section"
	"github.com/vendra/formwizard/pkg/upload"
	"github.com/vendra/formwizard/pkg/wizard"
)

// Re-exported core types so simple consumers only import this package.
type (
	Definition = wizard.Definition
	Session    = wizard.Session
	State      = wizard.State
	Store      = wizard.Store
	Option     = wizard.Option

	SectionDefinition = section.Definition
	FileRef           = upload.FileRef
	Uploader          = upload.Uploader
)

// NewSession starts a wizard session on the first section of def.
func NewSession(def Definition, store Store, uploader Uploader, opts ...Option) (*Session, error) {
	return wizard.NewSession(def, store, uploader, opts...)
}

// NewDefinition validates the section list and wraps it in a Definition.
func NewDefinition(sections ...section.Definition) (Definition, error) {
	return wizard.NewDefinition(sections...)
}

// ParseYAML reads a wizard definition plus field mapping from a YAML document.
func ParseYAML(data []byte) (wizard.FileConfig, error) {
	return wizard.ParseYAML(data)
}
