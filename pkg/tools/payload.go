package tools

// Records returns the list of objects in a tool payload. Backends answer
// either with a bare array (wrapped as "items") or an object holding the
// list under a resource key such as "tasks" or "masjids".
func Records(data map[string]any, keys ...string) []map[string]any {
	all := append(append([]string{}, keys...), "items", "results", "data")
	for _, k := range all {
		raw, ok := data[k].([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(raw))
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// Record returns the single object in a tool payload, unwrapping a
// resource key such as "task" when present.
func Record(data map[string]any, key string) map[string]any {
	if m, ok := data[key].(map[string]any); ok {
		return m
	}
	return data
}
