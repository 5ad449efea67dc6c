package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vendra/formwizard/pkg/section"
)

// Sequencing errors indicate a caller bug in UI wiring, not a user mistake.
// They are surfaced loudly instead of being folded into field errors.
var (
	// ErrSectionLocked is returned when entering a section that has not been
	// unlocked yet.
	ErrSectionLocked = errors.New("wizard: section is locked")
	// ErrSaveInFlight is returned when a save starts while another save for
	// the same session has not finished.
	ErrSaveInFlight = errors.New("wizard: save already in flight")
	// ErrUnknownSection is returned for section ids outside the definition.
	ErrUnknownSection = errors.New("wizard: unknown section")
	// ErrEntityRequired is returned when hydrating without an entity id.
	ErrEntityRequired = errors.New("wizard: entity id is required to hydrate")
)

// ValidationError reports a failed validation pass for one section. It is
// recoverable: the user corrects the fields and retries; session state is
// untouched.
type ValidationError struct {
	SectionID string
	Result    section.Result
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Result.FieldErrors))
	for name := range e.Result.FieldErrors {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fmt.Sprintf("wizard: section %s failed validation: %s", e.SectionID, strings.Join(fields, ", "))
}

// PersistenceError reports a failed create or update call. State is unchanged
// and the user retries manually; the session never retries on its own.
type PersistenceError struct {
	Op  string // "create" or "update"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("wizard: %s entity: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
