// Package manifest loads the required-tool manifest the registry is validated against.
package manifest

// ToolSpec describes one tool in the manifest.
type ToolSpec struct {
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Method      string `json:"method,omitempty"`
	Path        string `json:"path,omitempty"`
}

// Manifest is the tool manifest document.
type Manifest struct {
	Name          string              `json:"name"`
	Version       string              `json:"version"`
	Description   string              `json:"description,omitempty"`
	RequiredTools []string            `json:"requiredTools"`
	Tools         map[string]ToolSpec `json:"tools"`
	// Source is where the manifest was loaded from; "embedded" for the default.
	Source string `json:"-"`
}

// Spec returns the spec for name and whether it exists.
func (m *Manifest) Spec(name string) (ToolSpec, bool) {
	s, ok := m.Tools[name]
	return s, ok
}
