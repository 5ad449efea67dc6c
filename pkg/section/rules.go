package section

import (
	"regexp"
	"strconv"
	"strings"
)

// Pattern returns a RuleFunc that matches string values against re. Non-string
// values fail with the same message rather than panicking.
func Pattern(re *regexp.Regexp, message string) RuleFunc {
	return func(value any) string {
		s, ok := value.(string)
		if !ok {
			return message
		}
		if re.MatchString(s) {
			return ""
		}
		return message
	}
}

// Range returns a RuleFunc enforcing an inclusive numeric range. Values that
// do not parse as numbers fail with the given message.
func Range(min, max float64, message string) RuleFunc {
	return func(value any) string {
		f, ok := ruleNumber(value)
		if !ok {
			return message
		}
		if f < min || f > max {
			return message
		}
		return ""
	}
}

// MaxLen returns a RuleFunc limiting the rune length of string values.
func MaxLen(limit int, message string) RuleFunc {
	return func(value any) string {
		s, ok := value.(string)
		if !ok {
			return message
		}
		if len([]rune(s)) > limit {
			return message
		}
		return ""
	}
}

// OneOf returns a RuleFunc restricting a value to an allowed set. List values
// are checked element-wise.
func OneOf(allowed []string, message string) RuleFunc {
	set := make(map[string]bool, len(allowed))
	for _, item := range allowed {
		set[item] = true
	}
	return func(value any) string {
		switch v := value.(type) {
		case string:
			if set[v] {
				return ""
			}
			return message
		case []string:
			for _, item := range v {
				if !set[item] {
					return message
				}
			}
			return ""
		default:
			return message
		}
	}
}

// MustPattern compiles expr and wraps Pattern, panicking on a bad expression.
// Intended for static section tables.
func MustPattern(expr, message string) RuleFunc {
	return Pattern(regexp.MustCompile(expr), message)
}

func ruleNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
