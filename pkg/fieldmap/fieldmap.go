// Package fieldmap reconciles the flat client-side field namespace with the
// server-side representation of an entity. A Mapping is a static table built
// once at wiring time; every translation and coercion is a pure function over
// its inputs so the same Mapping can back any number of wizard sessions.
package fieldmap

import (
	"fmt"
	"sort"
)

// Kind declares the coercion applied when a field crosses the client/server
// boundary.
type Kind int

const (
	// KindString passes values through untouched.
	KindString Kind = iota
	// KindNumber converts numeric strings to numbers; empty values are absent.
	KindNumber
	// KindBool accepts native booleans and the literal strings "true"/"false".
	KindBool
	// KindTriState maps the yes/no select idiom: "yes" is true, "no" is
	// false, anything else is absent.
	KindTriState
	// KindList decodes JSON-encoded (possibly double-encoded) list strings
	// into native string slices.
	KindList
	// KindDate converts CompositeDate values to ISO "YYYY-MM-DD" strings.
	KindDate
	// KindFile carries persisted file URLs; upload resolution happens
	// elsewhere, the mapping only renames.
	KindFile
)

// Spec describes one client field: the server-side name it maps to and the
// coercion kind. An empty Server keeps the client name on the wire.
type Spec struct {
	Server string
	Kind   Kind
}

// Mapping is the bidirectional client/server field-name table. Unmapped names
// pass through unchanged in both directions with KindString semantics.
type Mapping struct {
	byClient map[string]Spec
	byServer map[string]string
}

// New builds a Mapping from client-name keyed specs. Two client fields cannot
// claim the same server name; the table must stay bijective per field.
func New(specs map[string]Spec) (*Mapping, error) {
	m := &Mapping{
		byClient: make(map[string]Spec, len(specs)),
		byServer: make(map[string]string, len(specs)),
	}

	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, client := range names {
		if client == "" {
			return nil, fmt.Errorf("fieldmap: client field name is required")
		}
		spec := specs[client]
		server := spec.Server
		if server == "" {
			server = client
		}
		if prior, exists := m.byServer[server]; exists {
			return nil, fmt.Errorf("fieldmap: server name %q claimed by both %q and %q", server, prior, client)
		}
		m.byClient[client] = Spec{Server: server, Kind: spec.Kind}
		m.byServer[server] = client
	}
	return m, nil
}

// MustNew panics on table construction failure. Useful for package-level
// wiring of static tables.
func MustNew(specs map[string]Spec) *Mapping {
	m, err := New(specs)
	if err != nil {
		panic(err)
	}
	return m
}

// ServerName translates a client field name. Unmapped names pass through.
func (m *Mapping) ServerName(client string) string {
	if m == nil {
		return client
	}
	if spec, ok := m.byClient[client]; ok {
		return spec.Server
	}
	return client
}

// ClientName translates a server field name. Unmapped names pass through.
func (m *Mapping) ClientName(server string) string {
	if m == nil {
		return server
	}
	if client, ok := m.byServer[server]; ok {
		return client
	}
	return server
}

// KindOf reports the declared kind for a client field name.
func (m *Mapping) KindOf(client string) Kind {
	if m == nil {
		return KindString
	}
	if spec, ok := m.byClient[client]; ok {
		return spec.Kind
	}
	return KindString
}

// ToServerShape translates and coerces the listed client fields into the
// server payload shape. Absent values (empty strings, nil, incomplete dates,
// unparseable tri-states) are omitted rather than emitted as zero values.
func (m *Mapping) ToServerShape(values map[string]any, fieldNames []string) map[string]any {
	out := make(map[string]any, len(fieldNames))
	for _, name := range fieldNames {
		raw, ok := values[name]
		if !ok {
			continue
		}
		coerced, present := m.coerceOut(name, raw)
		if !present {
			continue
		}
		out[m.ServerName(name)] = coerced
	}
	return out
}

// ToClientShape translates a fetched server entity into client field names
// and canonical client values: numbers as float64, lists as []string, dates
// as CompositeDate. Idempotent over already-canonical values.
func (m *Mapping) ToClientShape(entity map[string]any) map[string]any {
	out := make(map[string]any, len(entity))
	for server, raw := range entity {
		client := m.ClientName(server)
		coerced, present := m.coerceIn(client, raw)
		if !present {
			continue
		}
		out[client] = coerced
	}
	return out
}

func (m *Mapping) coerceOut(client string, raw any) (any, bool) {
	switch m.KindOf(client) {
	case KindNumber:
		return coerceNumber(raw)
	case KindBool:
		return coerceBool(raw)
	case KindTriState:
		return coerceTriState(raw)
	case KindList:
		list, ok := decodeList(raw)
		if !ok {
			return nil, false
		}
		return list, true
	case KindDate:
		iso, ok := coerceISODate(raw)
		if !ok {
			return nil, false
		}
		return iso, true
	case KindFile, KindString:
		return passthrough(raw)
	default:
		return passthrough(raw)
	}
}

func (m *Mapping) coerceIn(client string, raw any) (any, bool) {
	switch m.KindOf(client) {
	case KindNumber:
		return coerceNumber(raw)
	case KindBool:
		return coerceBool(raw)
	case KindTriState:
		b, ok := coerceTriState(raw)
		if !ok {
			return nil, false
		}
		return b, true
	case KindList:
		list, ok := decodeList(raw)
		if !ok {
			return nil, false
		}
		return list, true
	case KindDate:
		date, ok := coerceCompositeDate(raw)
		if !ok {
			return nil, false
		}
		return date, true
	case KindFile, KindString:
		return passthrough(raw)
	default:
		return passthrough(raw)
	}
}

func passthrough(raw any) (any, bool) {
	if raw == nil {
		return nil, false
	}
	if s, ok := raw.(string); ok && s == "" {
		return nil, false
	}
	return raw, true
}
