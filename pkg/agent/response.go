package agent

import "time"

// Response is the outcome of one conversational turn. Success is false only
// when the turn itself broke, not when individual tools failed; per-tool
// outcomes live in ToolResults.
type Response struct {
	Content     string                 `json:"content"`
	Success     bool                   `json:"success"`
	ToolResults map[string]interface{} `json:"tool_results,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}
