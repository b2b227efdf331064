package apmec

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is a resource as returned by the orchestration API.
type Record map[string]any

// ID returns the "id" attribute, or "" if absent.
func (r Record) ID() string {
	s, _ := r.String("id")
	return s
}

// String returns the attribute key rendered as a string. Missing keys and
// JSON null yield ok == false. Numbers and booleans are formatted; nested
// objects and arrays are rendered as compact JSON.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val), true
		}
		return string(b), true
	default:
		return fmt.Sprint(val), true
	}
}

// StringOr returns the attribute as a string or def when it is absent.
func (r Record) StringOr(key, def string) string {
	if s, ok := r.String(key); ok {
		return s
	}
	return def
}
