// Package payload assembles the exact object sent to the remote resource for
// one section save: normalized field names, coerced values, resolved file
// URLs, and section-specific pruning.
package payload

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/vendra/formwizard/pkg/fieldmap"
)

// Option customises a Builder.
type Option func(*Builder)

// WithSanitizer runs the given bluemonday policy over the named client fields
// before normalization. Meant for free-text fields that accept pasted markup,
// such as company descriptions or review bodies.
func WithSanitizer(policy *bluemonday.Policy, fields ...string) Option {
	return func(b *Builder) {
		if policy == nil || len(fields) == 0 {
			return
		}
		b.policy = policy
		if b.sanitized == nil {
			b.sanitized = make(map[string]bool, len(fields))
		}
		for _, field := range fields {
			b.sanitized[field] = true
		}
	}
}

// BuildOptions carries per-call pruning decisions.
type BuildOptions struct {
	// KeepEmptyLists sends empty lists instead of pruning them, so a cleared
	// multi-select deletes the stored value server-side. Must be requested
	// explicitly by the call site; it is never inferred.
	KeepEmptyLists bool
}

// Builder produces server payloads from raw client values. It is stateless
// across calls and safe to share.
type Builder struct {
	mapping   *fieldmap.Mapping
	policy    *bluemonday.Policy
	sanitized map[string]bool
}

// NewBuilder wires a Builder to the field mapping. A nil mapping behaves as
// the identity table.
func NewBuilder(mapping *fieldmap.Mapping, opts ...Option) *Builder {
	b := &Builder{mapping: mapping}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Build normalizes the listed fields into the server shape, overlays resolved
// file URLs, and applies pruning. Scalars are included only when non-empty;
// lists are pruned unless opts.KeepEmptyLists; composite dates only appear
// fully specified (the normalizer drops partial ones).
func (b *Builder) Build(values map[string]any, fieldNames []string, fileURLs map[string]string, opts BuildOptions) map[string]any {
	prepared := values
	if len(b.sanitized) > 0 {
		prepared = make(map[string]any, len(values))
		for name, value := range values {
			prepared[name] = value
		}
		for name := range b.sanitized {
			if s, ok := prepared[name].(string); ok {
				prepared[name] = strings.TrimSpace(b.policy.Sanitize(s))
			}
		}
	}

	out := b.mapping.ToServerShape(prepared, fieldNames)

	if opts.KeepEmptyLists {
		for _, name := range fieldNames {
			if b.mapping.KindOf(name) != fieldmap.KindList {
				continue
			}
			value, set := prepared[name]
			if !set {
				continue
			}
			server := b.mapping.ServerName(name)
			if _, present := out[server]; !present && emptyList(value) {
				out[server] = []string{}
			}
		}
	}

	for field, url := range fileURLs {
		if url == "" {
			continue
		}
		out[b.mapping.ServerName(field)] = url
	}

	return out
}

func emptyList(value any) bool {
	switch v := value.(type) {
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case string:
		return strings.TrimSpace(v) == ""
	case nil:
		return true
	default:
		return false
	}
}
