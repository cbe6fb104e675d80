package config

// Merge returns a new mapping holding base overlaid with override. For keys
// present in both, nested mappings are merged recursively; any other value
// from override replaces the base value. Neither input is modified.
func Merge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = copyValue(v)
	}
	for k, v := range override {
		if ov, ok := asMap(v); ok {
			if bv, ok := asMap(out[k]); ok {
				out[k] = Merge(bv, ov)
				continue
			}
		}
		out[k] = copyValue(v)
	}
	return out
}

// asMap normalizes the map shapes produced by the JSON and YAML decoders.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func copyValue(v any) any {
	if m, ok := asMap(v); ok {
		return Merge(nil, m)
	}
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}
