package upload

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type countingUploader struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (u *countingUploader) UploadFile(_ context.Context, handle Handle, label string) (string, error) {
	u.mu.Lock()
	u.calls = append(u.calls, label)
	u.mu.Unlock()

	if err, ok := u.fail[label]; ok {
		return "", err
	}
	return "https://cdn.example.com/files/" + handle.Name, nil
}

func (u *countingUploader) labels() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.calls...)
}

func newRef(name string) FileRef {
	return NewFile(Handle{Name: name, Content: strings.NewReader("content")})
}

func TestResolveMixedBatch(t *testing.T) {
	t.Parallel()

	uploader := &countingUploader{}
	c, err := NewCoordinator(uploader)
	if err != nil {
		t.Fatalf("NewCoordinator returned error: %v", err)
	}

	got, err := c.Resolve(context.Background(), map[string]FileRef{
		"businessLicense": newRef("license.pdf"),
		"companyProfile":  ExistingURL("https://cdn.example.com/files/profile.pdf"),
		"isoCertificate":  newRef("iso.pdf"),
		"untouched":       {},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	want := map[string]string{
		"businessLicense": "https://cdn.example.com/files/license.pdf",
		"companyProfile":  "https://cdn.example.com/files/profile.pdf",
		"isoCertificate":  "https://cdn.example.com/files/iso.pdf",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Resolve mismatch (-want +got):\n%s", diff)
	}

	calls := uploader.labels()
	if len(calls) != 2 {
		t.Fatalf("expected 2 uploads, got %d (%v)", len(calls), calls)
	}
	for _, label := range calls {
		if label == "companyProfile" {
			t.Fatalf("existing URL must not be re-uploaded")
		}
	}
}

func TestResolveExistingOnlyMakesNoCalls(t *testing.T) {
	t.Parallel()

	uploader := &countingUploader{}
	c, _ := NewCoordinator(uploader)

	got, err := c.Resolve(context.Background(), map[string]FileRef{
		"businessLicense": ExistingURL("https://cdn.example.com/files/lic.pdf"),
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got["businessLicense"] != "https://cdn.example.com/files/lic.pdf" {
		t.Fatalf("unexpected URL %q", got["businessLicense"])
	}
	if calls := uploader.labels(); len(calls) != 0 {
		t.Fatalf("expected zero uploads, got %v", calls)
	}
}

func TestResolveAllOrNothing(t *testing.T) {
	t.Parallel()

	boom := errors.New("storage unavailable")
	uploader := &countingUploader{fail: map[string]error{"isoCertificate": boom}}
	c, _ := NewCoordinator(uploader)

	got, err := c.Resolve(context.Background(), map[string]FileRef{
		"businessLicense": newRef("license.pdf"),
		"isoCertificate":  newRef("iso.pdf"),
		"companyProfile":  ExistingURL("https://cdn.example.com/files/profile.pdf"),
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got != nil {
		t.Fatalf("expected no partial result, got %v", got)
	}

	var uploadErr *Error
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected *upload.Error, got %T", err)
	}
	if uploadErr.Field != "isoCertificate" {
		t.Fatalf("Field = %q, want isoCertificate", uploadErr.Field)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause")
	}
}

func TestResolveHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	uploader := &countingUploader{}
	c, _ := NewCoordinator(uploader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Resolve(ctx, map[string]FileRef{"f": newRef("x")}); err == nil {
		t.Fatalf("expected context error")
	}
}
