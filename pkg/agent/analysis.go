package agent

import (
	"encoding/json"
	"strings"
)

// Analysis is the model's reading of a user request: what they want, which
// tools to run, and with what arguments.
type Analysis struct {
	Intent      string                            `json:"intent"`
	Category    string                            `json:"category"`
	ToolsNeeded []string                          `json:"tools_needed"`
	Parameters  map[string]map[string]interface{} `json:"parameters"`
	Complexity  string                            `json:"complexity"`
}

// fallbackAnalysis is used whenever intent analysis cannot produce a usable
// result. The turn proceeds with no tool execution instead of aborting.
func fallbackAnalysis(intent string) *Analysis {
	return &Analysis{
		Intent:      intent,
		Category:    "general",
		ToolsNeeded: []string{},
		Parameters:  map[string]map[string]interface{}{},
		Complexity:  "medium",
	}
}

// parseAnalysis extracts the first JSON object substring from the model's
// raw text and decodes it. Models wrap the object in prose often enough
// that decoding the whole payload directly is not an option.
func parseAnalysis(raw string) (*Analysis, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(raw[start:end+1]), &analysis); err != nil {
		return nil, false
	}
	if analysis.Parameters == nil {
		analysis.Parameters = map[string]map[string]interface{}{}
	}
	if analysis.ToolsNeeded == nil {
		analysis.ToolsNeeded = []string{}
	}
	return &analysis, true
}

// toMap renders the analysis for response metadata and prompt context
func (a *Analysis) toMap() map[string]interface{} {
	return map[string]interface{}{
		"intent":       a.Intent,
		"category":     a.Category,
		"tools_needed": a.ToolsNeeded,
		"parameters":   a.Parameters,
		"complexity":   a.Complexity,
	}
}
