// Package upload resolves a section's file fields into persisted URLs. Fields
// hydrated from an existing entity carry their URL and are reused without a
// network call; newly chosen files are uploaded concurrently and the whole
// batch succeeds or fails together.
package upload

import "io"

type refKind int

const (
	refNone refKind = iota
	refNew
	refExisting
)

// Handle carries a newly selected file awaiting upload.
type Handle struct {
	Name    string
	Content io.Reader
}

// FileRef is either a new file awaiting upload or a marker for a URL that is
// already persisted. The explicit tag replaces the fragile convention of
// constructing a fake file object to mean "unchanged".
type FileRef struct {
	kind   refKind
	handle Handle
	url    string
}

// NewFile wraps a freshly chosen file.
func NewFile(handle Handle) FileRef {
	return FileRef{kind: refNew, handle: handle}
}

// ExistingURL marks a field whose remote value is already persisted; saving
// without touching the field must not re-upload.
func ExistingURL(url string) FileRef {
	return FileRef{kind: refExisting, url: url}
}

// IsZero reports whether the ref carries neither a file nor a URL.
func (r FileRef) IsZero() bool { return r.kind == refNone }

// IsNew reports whether the ref holds a file awaiting upload.
func (r FileRef) IsNew() bool { return r.kind == refNew }

// Handle returns the pending file when IsNew.
func (r FileRef) Handle() (Handle, bool) {
	return r.handle, r.kind == refNew
}

// URL returns the persisted URL when the ref is an existing marker.
func (r FileRef) URL() (string, bool) {
	return r.url, r.kind == refExisting
}
