package validator

import (
	"regexp"
	"strconv"
	"strings"
)

var numericPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// Preprocess normalizes raw input ahead of schema execution: strings are
// trimmed, then boolean-coerced, then numeric-coerced; objects and arrays
// are recursed into. Boolean coercion runs before numeric coercion on
// purpose: "1" and "0" must resolve to booleans, not numbers, and reversing
// the order changes which type ambiguous strings become.
func Preprocess(v any) any {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if b, ok := coerceBool(s); ok {
			return b
		}
		if numericPattern.MatchString(s) {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
		return s
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Preprocess(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Preprocess(val)
		}
		return out
	}
	return v
}

func coerceBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}
