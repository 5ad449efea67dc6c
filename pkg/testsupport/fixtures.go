// Package testsupport provides in-memory stand-ins for the wizard's external
// collaborators. Package tests and the CLI demo share them; nothing here is
// suitable for production use.
package testsupport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/vendra/formwizard/pkg/upload"
)

// MemStore is an in-memory entity store with call counters and injectable
// failures.
type MemStore struct {
	mu       sync.Mutex
	entities map[string]map[string]any

	creates int
	updates int
	fetches int

	CreateErr error
	UpdateErr error
	FetchErr  error
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{entities: make(map[string]map[string]any)}
}

// CreateEntity stores the payload under a fresh uuid and returns it.
func (s *MemStore) CreateEntity(_ context.Context, body map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creates++
	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	id := uuid.NewString()
	s.entities[id] = cloneEntity(body)
	return id, nil
}

// UpdateEntity merges the payload into an existing entity.
func (s *MemStore) UpdateEntity(_ context.Context, id string, body map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updates++
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	entity, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("testsupport: entity %q not found", id)
	}
	for key, value := range body {
		entity[key] = value
	}
	return nil
}

// FetchEntity returns a copy of the stored entity.
func (s *MemStore) FetchEntity(_ context.Context, id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches++
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	entity, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("testsupport: entity %q not found", id)
	}
	return cloneEntity(entity), nil
}

// Entity returns the stored entity without counting a fetch.
func (s *MemStore) Entity(id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	return cloneEntity(entity), true
}

// Seed stores an entity under the given id, for edit-mode tests.
func (s *MemStore) Seed(id string, entity map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[id] = cloneEntity(entity)
}

// CreateCalls reports how many creates were attempted.
func (s *MemStore) CreateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

// UpdateCalls reports how many updates were attempted.
func (s *MemStore) UpdateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

// FetchCalls reports how many fetches were attempted.
func (s *MemStore) FetchCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func cloneEntity(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

// RecorderUploader records upload labels and returns deterministic URLs.
// Labels listed in Fail cause that upload to error.
type RecorderUploader struct {
	mu    sync.Mutex
	calls []string

	Fail map[string]error
}

// NewRecorderUploader returns an uploader that never fails.
func NewRecorderUploader() *RecorderUploader {
	return &RecorderUploader{}
}

// UploadFile records the call and returns a URL derived from the file name,
// or a uuid-based one when the handle is unnamed.
func (u *RecorderUploader) UploadFile(_ context.Context, handle upload.Handle, label string) (string, error) {
	u.mu.Lock()
	u.calls = append(u.calls, label)
	u.mu.Unlock()

	if err, ok := u.Fail[label]; ok {
		return "", err
	}
	if handle.Content != nil {
		// drain so reader-backed handles behave like a real client
		_, _ = io.Copy(io.Discard, handle.Content)
	}
	name := handle.Name
	if name == "" {
		name = uuid.NewString()
	}
	return "https://cdn.example.com/files/" + name, nil
}

// Calls returns the labels uploaded so far.
func (u *RecorderUploader) Calls() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.calls...)
}
