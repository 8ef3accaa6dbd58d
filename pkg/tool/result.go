package tool

import (
	"fmt"
	"time"
)

// Result is the outcome of a single tool execution. It is constructed once
// per invocation and not mutated afterwards, except for DurationMs which is
// stamped by the dispatch wrapper, never by the tool body itself.
type Result struct {
	Success    bool                   `json:"success"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	DurationMs float64                `json:"execution_time_ms,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// NewResult creates a successful result carrying the given data
func NewResult(data map[string]interface{}) *Result {
	return &Result{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Errorf creates a failed result with a formatted error message
func Errorf(format string, args ...interface{}) *Result {
	return &Result{
		Success:   false,
		Error:     fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	}
}

// ToMap converts the result to a plain map for transport back into the
// orchestration loop and ultimately into the model-facing context.
func (r *Result) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"success":   r.Success,
		"timestamp": r.Timestamp.Format(time.RFC3339Nano),
	}
	if r.Data != nil {
		m["data"] = r.Data
	}
	if r.Error != "" {
		m["error"] = r.Error
	}
	if r.Metadata != nil {
		m["metadata"] = r.Metadata
	}
	if r.DurationMs > 0 {
		m["execution_time_ms"] = r.DurationMs
	}
	return m
}
