package schema

// CopyValue returns a deep copy of the map[string]any and []any containers in v.
// Other values, including typed maps and slices, are returned as they are.
func CopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CopyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CopyValue(e)
		}
		return out
	default:
		return v
	}
}
