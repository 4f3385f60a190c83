// Package resolve reads logical fields out of heterogeneous raw dorm records.
// Every lookup takes an ordered list of dotted paths and returns the first one
// that holds a usable value; absence is the common case, never an error.
package resolve

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/iliyamo/dorm-finder/internal/model"
)

// Placeholder is returned by String when no candidate path holds a value.
const Placeholder = "-"

// Lookup walks a dotted path through nested maps and lists. Numeric segments
// index into lists.
func Lookup(rec model.RawRecord, path string) (any, bool) {
	var cur any = map[string]any(rec)
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case model.RawRecord:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		case []map[string]any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Present reports whether v counts as a value: not nil and not a blank string.
func Present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case *string:
		return t != nil && strings.TrimSpace(*t) != ""
	}
	return true
}

// First returns the first present value among paths.
func First(rec model.RawRecord, paths ...string) (any, bool) {
	for _, p := range paths {
		if v, ok := Lookup(rec, p); ok && Present(v) {
			return v, true
		}
	}
	return nil, false
}

// String resolves paths to a trimmed string, or fallback when none is present.
// An empty fallback means Placeholder.
func String(rec model.RawRecord, fallback string, paths ...string) string {
	if fallback == "" {
		fallback = Placeholder
	}
	v, ok := First(rec, paths...)
	if !ok {
		return fallback
	}
	s := strings.TrimSpace(AsString(v))
	if s == "" {
		return fallback
	}
	return s
}

// OptionalString is like String but returns "" when nothing is present.
func OptionalString(rec model.RawRecord, paths ...string) string {
	v, ok := First(rec, paths...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(AsString(v))
}

// Float resolves the first path holding a finite number.
func Float(rec model.RawRecord, paths ...string) (float64, bool) {
	for _, p := range paths {
		v, ok := Lookup(rec, p)
		if !ok || !Present(v) {
			continue
		}
		if f, ok := AsFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

// FloatPtr is Float returning nil when nothing resolves.
func FloatPtr(rec model.RawRecord, paths ...string) *float64 {
	f, ok := Float(rec, paths...)
	if !ok {
		return nil
	}
	return &f
}

// Int resolves the first path holding a finite number, rounded.
func Int(rec model.RawRecord, paths ...string) (int, bool) {
	f, ok := Float(rec, paths...)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

// IntPtr is Int returning nil when nothing resolves.
func IntPtr(rec model.RawRecord, paths ...string) *int {
	n, ok := Int(rec, paths...)
	if !ok {
		return nil
	}
	return &n
}

// NonNegInt resolves a count, defaulting to 0 and never going below it.
func NonNegInt(rec model.RawRecord, paths ...string) int {
	n, ok := Int(rec, paths...)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// List resolves the first path holding a list.
func List(rec model.RawRecord, paths ...string) []any {
	for _, p := range paths {
		v, ok := Lookup(rec, p)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case []any:
			if len(t) > 0 {
				return t
			}
		case []string:
			if len(t) > 0 {
				out := make([]any, len(t))
				for i, s := range t {
					out[i] = s
				}
				return out
			}
		case []map[string]any:
			if len(t) > 0 {
				out := make([]any, len(t))
				for i, m := range t {
					out[i] = m
				}
				return out
			}
		}
	}
	return nil
}

// AsRecord converts a nested map value into a RawRecord.
func AsRecord(v any) (model.RawRecord, bool) {
	switch t := v.(type) {
	case model.RawRecord:
		return t, true
	case map[string]any:
		return model.RawRecord(t), true
	}
	return nil, false
}

// AsString renders scalars as strings.
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case []byte:
		return string(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

// AsFloat converts numbers and numeric strings ("4,500", " 12.5 ") into a
// finite float64.
func AsFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case float32:
		f = float64(t)
	case float64:
		f = t
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string, []byte:
		s := strings.TrimSpace(strings.ReplaceAll(AsString(t), ",", ""))
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Truthy implements the verification flag rule: boolean true, numeric 1, or
// one of "true", "1", "yes", "verified" in any case.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string, []byte, *string:
		switch strings.ToLower(strings.TrimSpace(AsString(t))) {
		case "true", "1", "yes", "verified":
			return true
		}
		return false
	}
	if f, ok := AsFloat(v); ok {
		return f == 1
	}
	return false
}
