// Package values converts loosely typed configuration values.
// TOML decodes integers as int64 and arrays as []any; callers that set
// values programmatically may use native Go types. Both are accepted.
package values

import (
	"strconv"
	"time"
)

// String returns v as a string, or "".
func String(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// Int returns v as an int, or 0.
func Int(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool returns v as a bool, or false.
func Bool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(x)
		return err == nil && b
	default:
		return false
	}
}

// Duration accepts a Go duration string ("90s", "2m") or a number of
// whole seconds. Anything else is 0.
func Duration(v any) time.Duration {
	switch x := v.(type) {
	case time.Duration:
		return x
	case string:
		d, err := time.ParseDuration(x)
		if err != nil {
			return 0
		}
		return d
	case int, int64, float64:
		return time.Duration(Int(x)) * time.Second
	default:
		return 0
	}
}

// StringSlice returns v as []string, dropping non-string elements.
func StringSlice(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
