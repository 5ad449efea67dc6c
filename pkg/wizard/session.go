package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/vendra/formwizard/pkg/fieldmap"
	"github.com/vendra/formwizard/pkg/payload"
	"github.com/vendra/formwizard/pkg/section"
	"github.com/vendra/formwizard/pkg/upload"
)

// Option customises a Session.
type Option func(*Session)

// WithMapping installs the client/server field table. Without it names pass
// through unchanged and no field is coerced or recognised as a file field.
func WithMapping(mapping *fieldmap.Mapping) Option {
	return func(s *Session) {
		s.mapping = mapping
	}
}

// WithLogger attaches a structured logger. The session is silent by default.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSanitizer sanitizes the named free-text fields with the given policy
// before every submission.
func WithSanitizer(policy *bluemonday.Policy, fields ...string) Option {
	return func(s *Session) {
		s.builderOpts = append(s.builderOpts, payload.WithSanitizer(policy, fields...))
	}
}

// Session owns the mutable state of one wizard editing session. It is meant
// for a single logical thread of control; the only internal guard is that one
// save may be in flight at a time.
type Session struct {
	registry *section.Registry
	mapping  *fieldmap.Mapping
	store    Store
	files    *upload.Coordinator
	builder  *payload.Builder
	logger   *zap.Logger

	builderOpts []payload.Option

	saveMu sync.Mutex

	entityID  string
	current   string
	unlocked  int // prefix length of the section order
	completed map[string]bool
	values    map[string]any
	pending   map[string]upload.FileRef
	fileURLs  map[string]string
}

// NewSession starts a create-mode session positioned on the first section.
// The uploader may be nil when the wizard has no file fields; selecting a
// file without one fails the save.
func NewSession(def Definition, store Store, uploader upload.Uploader, opts ...Option) (*Session, error) {
	registry, err := section.NewRegistry(def.Sections...)
	if err != nil {
		return nil, fmt.Errorf("wizard: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("wizard: store is required")
	}
	if uploader == nil {
		uploader = upload.UploaderFunc(func(context.Context, upload.Handle, string) (string, error) {
			return "", fmt.Errorf("wizard: no uploader configured")
		})
	}
	coordinator, err := upload.NewCoordinator(uploader)
	if err != nil {
		return nil, err
	}

	s := &Session{
		registry:  registry,
		store:     store,
		files:     coordinator,
		logger:    zap.NewNop(),
		current:   registry.Order()[0],
		unlocked:  1,
		completed: make(map[string]bool),
		values:    make(map[string]any),
		pending:   make(map[string]upload.FileRef),
		fileURLs:  make(map[string]string),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.builder = payload.NewBuilder(s.mapping, s.builderOpts...)
	return s, nil
}

// GetState returns a deep-copied snapshot of the session.
func (s *Session) GetState() State {
	order := s.registry.Order()
	unlocked := append([]string(nil), order[:s.unlocked]...)

	completed := make([]string, 0, len(s.completed))
	for _, id := range order {
		if s.completed[id] {
			completed = append(completed, id)
		}
	}

	pending := make(map[string]upload.FileRef, len(s.pending))
	for field, ref := range s.pending {
		pending[field] = ref
	}
	urls := make(map[string]string, len(s.fileURLs))
	for field, url := range s.fileURLs {
		urls[field] = url
	}

	return State{
		EntityID:            s.entityID,
		CurrentSectionID:    s.current,
		UnlockedSectionIDs:  unlocked,
		CompletedSectionIDs: completed,
		Values:              cloneValues(s.values),
		PendingFiles:        pending,
		FileURLs:            urls,
		Completed:           s.Completed(),
	}
}

// Completed reports whether the final section has been persisted.
func (s *Session) Completed() bool {
	order := s.registry.Order()
	return s.completed[order[len(order)-1]]
}

// CurrentSection returns the definition of the section being edited.
func (s *Session) CurrentSection() section.Definition {
	def, _ := s.registry.Section(s.current)
	return def
}

// SetFieldValue records a raw client value. Values are not validated here;
// validation happens as part of the save.
func (s *Session) SetFieldValue(name string, value any) {
	s.values[name] = value
}

// SetFile stages a file ref for a field: a new upload or an existing URL
// marker. A zero ref clears the staged file.
func (s *Session) SetFile(name string, ref upload.FileRef) {
	if ref.IsZero() {
		delete(s.pending, name)
		return
	}
	s.pending[name] = ref
}

// EnterSection moves editing focus to an unlocked section.
func (s *Session) EnterSection(id string) error {
	idx := s.registry.Index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSection, id)
	}
	if idx >= s.unlocked {
		return fmt.Errorf("%w: %q", ErrSectionLocked, id)
	}
	s.current = id
	return nil
}

// SaveCurrentSection validates the current section, resolves its file fields,
// builds the payload, and persists it. The first successful save creates the
// entity; later saves update it. On any failure the session state is exactly
// as it was before the call. On success the next section unlocks and becomes
// current.
func (s *Session) SaveCurrentSection(ctx context.Context) error {
	if !s.saveMu.TryLock() {
		return ErrSaveInFlight
	}
	defer s.saveMu.Unlock()

	id := s.current
	def, ok := s.registry.Section(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, id)
	}

	result, err := s.registry.Validate(id, s.validationView(def))
	if err != nil {
		return err
	}
	if !result.Valid {
		s.logger.Debug("section validation failed",
			zap.String("section", id),
			zap.Int("fields", len(result.FieldErrors)))
		return &ValidationError{SectionID: id, Result: result}
	}

	urls, err := s.files.Resolve(ctx, s.sectionFileRefs(def))
	if err != nil {
		s.logger.Warn("file resolution failed", zap.String("section", id), zap.Error(err))
		return err
	}

	body := s.builder.Build(s.values, def.FieldNames, urls, payload.BuildOptions{
		KeepEmptyLists: def.KeepEmptyLists,
	})

	entityID := s.entityID
	if entityID == "" {
		created, err := s.store.CreateEntity(ctx, body)
		if err != nil {
			return &PersistenceError{Op: "create", Err: err}
		}
		entityID = created
		s.logger.Info("entity created", zap.String("entity", entityID), zap.String("section", id))
	} else {
		if err := s.store.UpdateEntity(ctx, entityID, body); err != nil {
			return &PersistenceError{Op: "update", Err: err}
		}
		s.logger.Info("entity updated", zap.String("entity", entityID), zap.String("section", id))
	}

	// Persistence succeeded: commit all state changes at once.
	s.entityID = entityID
	for field, url := range urls {
		s.fileURLs[field] = url
		s.values[field] = url
		delete(s.pending, field)
	}
	s.completed[id] = true

	order := s.registry.Order()
	if idx := s.registry.Index(id); idx+1 < len(order) {
		if idx+2 > s.unlocked {
			s.unlocked = idx + 2
		}
		s.current = order[idx+1]
	}
	return nil
}

// HydrateFromEntity switches the session into edit mode for an existing
// entity: every section unlocks, values are populated from the server shape,
// and file fields become reusable URL markers so re-saving without touching
// them uploads nothing.
func (s *Session) HydrateFromEntity(id string, entity map[string]any) error {
	if id == "" {
		return ErrEntityRequired
	}

	s.entityID = id
	s.values = s.mapping.ToClientShape(entity)
	s.pending = make(map[string]upload.FileRef)
	s.fileURLs = make(map[string]string)

	for name, value := range s.values {
		if s.mapping.KindOf(name) != fieldmap.KindFile {
			continue
		}
		if url, ok := value.(string); ok && url != "" {
			s.fileURLs[name] = url
		}
	}

	order := s.registry.Order()
	s.unlocked = len(order)
	for _, sectionID := range order {
		s.completed[sectionID] = true
	}
	s.current = order[0]

	s.logger.Info("session hydrated", zap.String("entity", id), zap.Int("fields", len(s.values)))
	return nil
}

// Load fetches the entity from the store and hydrates from it.
func (s *Session) Load(ctx context.Context, id string) error {
	if id == "" {
		return ErrEntityRequired
	}
	entity, err := s.store.FetchEntity(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "fetch", Err: err}
	}
	return s.HydrateFromEntity(id, entity)
}

// validationView is the value map the validator sees: raw values plus staged
// file refs overlaid so a required file field counts as present when either a
// new file is staged or a persisted URL exists.
func (s *Session) validationView(def section.Definition) map[string]any {
	view := make(map[string]any, len(s.values))
	for name, value := range s.values {
		view[name] = value
	}
	for _, name := range def.FieldNames {
		if ref, ok := s.pending[name]; ok && !ref.IsZero() {
			view[name] = ref
			continue
		}
		if url, ok := s.fileURLs[name]; ok && url != "" {
			view[name] = url
		}
	}
	return view
}

// sectionFileRefs collects the file work for one section: staged uploads win
// over previously persisted URLs.
func (s *Session) sectionFileRefs(def section.Definition) map[string]upload.FileRef {
	refs := make(map[string]upload.FileRef)
	for _, name := range def.FieldNames {
		if ref, ok := s.pending[name]; ok && !ref.IsZero() {
			refs[name] = ref
			continue
		}
		if url, ok := s.fileURLs[name]; ok && url != "" {
			refs[name] = upload.ExistingURL(url)
		}
	}
	return refs
}
