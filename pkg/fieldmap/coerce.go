package fieldmap

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func coerceNumber(raw any) (any, bool) {
	switch v := raw.(type) {
	case float64:
		return v, finite(v)
	case float32:
		return float64(v), finite(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil && finite(f)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || !finite(f) {
			return nil, false
		}
		return f, true
	default:
		return nil, false
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func coerceBool(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.TrimSpace(v) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func coerceTriState(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes":
			return true, true
		case "no":
			return false, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// decodeList unwraps a value into a native []string. Server values arrive in
// inconsistent encodings: native arrays, JSON-encoded strings, double-encoded
// strings, and strings wrapped in a stray brace pair. Decoding recurses until
// it reaches a native list or a terminal string; a terminal string falls back
// to comma-splitting. Already-native lists are returned unchanged, which keeps
// the function idempotent.
func decodeList(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringify(item))
		}
		return out, true
	case string:
		return decodeListString(v)
	default:
		return nil, false
	}
}

func decodeListString(value string) ([]string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, false
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
		switch typed := decoded.(type) {
		case []any:
			return decodeList(typed)
		case string:
			if typed == trimmed {
				// a bare JSON string decoding to itself terminates here
				return terminalList(typed)
			}
			return decodeListString(typed)
		default:
			return terminalList(trimmed)
		}
	}

	// Upstream occasionally wraps the encoded array in a brace pair; strip
	// one layer and retry before giving up.
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
		if inner != "" && inner != trimmed {
			if list, ok := decodeListString(inner); ok {
				return list, true
			}
		}
	}

	return terminalList(trimmed)
}

func terminalList(value string) ([]string, bool) {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
