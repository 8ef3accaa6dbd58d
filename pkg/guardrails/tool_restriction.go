package guardrails

import "strings"

// ToolRestriction limits which tools the agent may execute. It is applied
// to the tool names the model selects, not to free text, so it lives
// outside the Pipeline text chain.
type ToolRestriction struct {
	allowed map[string]bool
}

// NewToolRestriction creates an allow-list restriction. An empty list
// allows nothing.
func NewToolRestriction(allowedTools []string) *ToolRestriction {
	allowed := make(map[string]bool, len(allowedTools))
	for _, name := range allowedTools {
		allowed[strings.ToLower(name)] = true
	}
	return &ToolRestriction{allowed: allowed}
}

// Allowed reports whether a tool may be executed
func (t *ToolRestriction) Allowed(name string) bool {
	return t.allowed[strings.ToLower(name)]
}

// Filter splits the requested tool names into allowed and denied
func (t *ToolRestriction) Filter(names []string) (allowed, denied []string) {
	for _, name := range names {
		if t.Allowed(name) {
			allowed = append(allowed, name)
		} else {
			denied = append(denied, name)
		}
	}
	return allowed, denied
}
