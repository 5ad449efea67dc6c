package fieldmap

import (
	"fmt"
	"strconv"
	"strings"
)

// CompositeDate is the split day/month/year representation used by date
// selects in the client. Components are strings so partially filled selects
// stay representable; the wire form exists only once all three are present.
type CompositeDate struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// Complete reports whether all three components are set.
func (d CompositeDate) Complete() bool {
	return strings.TrimSpace(d.Day) != "" &&
		strings.TrimSpace(d.Month) != "" &&
		strings.TrimSpace(d.Year) != ""
}

// ISO renders the date as "YYYY-MM-DD". The second return is false when the
// date is incomplete or a component is not numeric.
func (d CompositeDate) ISO() (string, bool) {
	if !d.Complete() {
		return "", false
	}
	year, err1 := strconv.Atoi(strings.TrimSpace(d.Year))
	month, err2 := strconv.Atoi(strings.TrimSpace(d.Month))
	day, err3 := strconv.Atoi(strings.TrimSpace(d.Day))
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// ParseISODate splits a "YYYY-MM-DD" string into a CompositeDate.
func ParseISODate(value string) (CompositeDate, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), "-", 3)
	if len(parts) != 3 {
		return CompositeDate{}, false
	}
	for _, part := range parts {
		if _, err := strconv.Atoi(part); err != nil {
			return CompositeDate{}, false
		}
	}
	return CompositeDate{
		Year:  parts[0],
		Month: strings.TrimLeft(parts[1], "0"),
		Day:   strings.TrimLeft(parts[2], "0"),
	}, true
}

func coerceISODate(raw any) (string, bool) {
	switch v := raw.(type) {
	case CompositeDate:
		return v.ISO()
	case *CompositeDate:
		if v == nil {
			return "", false
		}
		return v.ISO()
	case string:
		if _, ok := ParseISODate(v); ok {
			return strings.TrimSpace(v), true
		}
		return "", false
	case map[string]any:
		return compositeFromMap(v).ISO()
	default:
		return "", false
	}
}

func coerceCompositeDate(raw any) (CompositeDate, bool) {
	switch v := raw.(type) {
	case CompositeDate:
		if !v.Complete() {
			return CompositeDate{}, false
		}
		return v, true
	case string:
		return ParseISODate(v)
	case map[string]any:
		date := compositeFromMap(v)
		if !date.Complete() {
			return CompositeDate{}, false
		}
		return date, true
	default:
		return CompositeDate{}, false
	}
}

func compositeFromMap(raw map[string]any) CompositeDate {
	component := func(key string) string {
		value, ok := raw[key]
		if !ok {
			return ""
		}
		switch typed := value.(type) {
		case string:
			return typed
		case float64:
			return strconv.Itoa(int(typed))
		case int:
			return strconv.Itoa(typed)
		default:
			return ""
		}
	}
	return CompositeDate{
		Day:   component("day"),
		Month: component("month"),
		Year:  component("year"),
	}
}
