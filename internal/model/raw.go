package model

// RawRecord is a dorm record exactly as a data source returned it. Field names
// and nesting vary between sources (SQL rows, documents, imported sheets), so
// values are only read through the resolve package and turned into a Listing
// by the listing normalizer before anything else looks at them.
type RawRecord map[string]any

// Clone returns a deep copy of the record. Nested maps and slices are copied;
// scalar values are shared.
func (r RawRecord) Clone() RawRecord {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]any(r)).(map[string]any)
}

// Merge copies every non-nil top-level field of other into r. Existing keys
// are overwritten.
func (r RawRecord) Merge(other RawRecord) {
	for k, v := range other {
		if v == nil {
			continue
		}
		r[k] = cloneValue(v)
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case RawRecord:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
