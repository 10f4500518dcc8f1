package registry

import "sort"

// ToolsByCategory returns registered tool names grouped by category, each group sorted.
func (r *Registry) ToolsByCategory() map[Category][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Category][]string)
	for name, t := range r.tools {
		out[t.Category] = append(out[t.Category], name)
	}
	for c := range out {
		sort.Strings(out[c])
	}
	return out
}

// Describe returns the handler-free descriptors of all registered tools,
// sorted by category then name.
func (r *Registry) Describe() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	required := make(map[string]bool, len(r.required))
	for _, n := range r.required {
		required[n] = true
	}

	out := make([]ToolInfo, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, ToolInfo{
			Name:        t.Name,
			Category:    t.Category,
			Description: t.Description,
			Required:    required[t.Name],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}
