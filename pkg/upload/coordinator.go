package upload

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Uploader is the external file-storage collaborator: one file in, one
// persisted URL out. The label identifies the field for storage-side naming
// and diagnostics.
type Uploader interface {
	UploadFile(ctx context.Context, handle Handle, label string) (string, error)
}

// UploaderFunc adapts a function into an Uploader.
type UploaderFunc func(ctx context.Context, handle Handle, label string) (string, error)

// UploadFile delegates to the underlying function.
func (fn UploaderFunc) UploadFile(ctx context.Context, handle Handle, label string) (string, error) {
	return fn(ctx, handle, label)
}

// Error reports a failed upload batch, naming the first field that failed.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upload: field %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Coordinator fans a section's pending uploads out to the Uploader and joins
// the results. It holds no per-call state and is safe for reuse.
type Coordinator struct {
	uploader Uploader
}

// NewCoordinator wires a Coordinator to its storage collaborator.
func NewCoordinator(uploader Uploader) (*Coordinator, error) {
	if uploader == nil {
		return nil, fmt.Errorf("upload: uploader is required")
	}
	return &Coordinator{uploader: uploader}, nil
}

// Resolve turns every FileRef into a URL. Existing markers are returned
// as-is with no network call; new files upload concurrently. If any upload
// fails the whole call fails with *Error and no partial map is returned, so
// the caller's state stays untouched.
func (c *Coordinator) Resolve(ctx context.Context, refs map[string]FileRef) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(refs))
	var pending []string
	for field, ref := range refs {
		switch {
		case ref.IsZero():
			continue
		case ref.IsNew():
			pending = append(pending, field)
		default:
			url, _ := ref.URL()
			out[field] = url
		}
	}
	sort.Strings(pending)

	if len(pending) == 0 {
		return out, nil
	}

	uploaded := make([]string, len(pending))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, field := range pending {
		i, field := i, field
		handle, _ := refs[field].Handle()
		group.Go(func() error {
			url, err := c.uploader.UploadFile(groupCtx, handle, field)
			if err != nil {
				return &Error{Field: field, Err: err}
			}
			uploaded[i] = url
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for i, field := range pending {
		out[field] = uploaded[i]
	}
	return out, nil
}
