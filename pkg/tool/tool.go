package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/corenetops/devops-agent/pkg/logging"
)

// Health statuses reported by tools
const (
	StatusHealthy        = "healthy"
	StatusNotInitialized = "not_initialized"
	StatusError          = "error"
)

// Health is a point-in-time snapshot of a tool's status
type Health struct {
	Tool        string    `json:"tool"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Tool is a named, schema-validated unit of externally-effecting work.
// Execute must not return an error for expected domain failures; those are
// reported through a failed Result. Errors and panics from Execute are
// converted by Invoke, never propagated to the orchestration loop.
type Tool interface {
	// Name returns the tool name, unique within a registry
	Name() string

	// Description returns a description of what the tool does
	Description() string

	// Spec returns the tool's parameter schema
	Spec() *Spec

	// Execute performs the unit of work with validated parameters
	Execute(ctx context.Context, params map[string]interface{}) (*Result, error)

	// Initialize prepares the tool; calling it twice is harmless
	Initialize(ctx context.Context) error

	// Health reports the tool's current status
	Health(ctx context.Context) Health
}

// Base carries the non-Execute surface of a tool. Concrete tools embed a
// *Base and implement Execute.
type Base struct {
	name        string
	description string
	spec        *Spec
	initialized bool
}

// NewBase creates the shared tool surface from a spec
func NewBase(spec *Spec) *Base {
	return &Base{
		name:        spec.Name,
		description: spec.Description,
		spec:        spec,
	}
}

// Name returns the tool name
func (b *Base) Name() string { return b.name }

// Description returns the tool description
func (b *Base) Description() string { return b.description }

// Spec returns the tool specification
func (b *Base) Spec() *Spec { return b.spec }

// Initialize marks the tool ready
func (b *Base) Initialize(ctx context.Context) error {
	b.initialized = true
	return nil
}

// Health reports healthy once Initialize has run, not_initialized before
func (b *Base) Health(ctx context.Context) Health {
	status := StatusNotInitialized
	if b.initialized {
		status = StatusHealthy
	}
	return Health{
		Tool:        b.name,
		Status:      status,
		Description: b.description,
		Timestamp:   time.Now(),
	}
}

// Invoke is the required entry point for all external callers: it validates
// the parameters, executes the tool, and stamps the wall-clock duration
// measured from just before validation. Validation failures, returned
// errors and panics all become a failed Result; Invoke never propagates.
func Invoke(ctx context.Context, logger logging.Logger, t Tool, params map[string]interface{}) (result *Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "Tool execution panicked", map[string]interface{}{
				"tool":  t.Name(),
				"panic": fmt.Sprintf("%v", r),
			})
			result = Errorf("tool %s panicked: %v", t.Name(), r)
			result.DurationMs = float64(time.Since(start)) / float64(time.Millisecond)
		}
	}()

	validated, err := ValidateParameters(t.Spec(), params)
	if err != nil {
		logger.Warn(ctx, "Tool parameter validation failed", map[string]interface{}{
			"tool":  t.Name(),
			"error": err.Error(),
		})
		result = Errorf("%s", err.Error())
		result.DurationMs = float64(time.Since(start)) / float64(time.Millisecond)
		return result
	}

	result, err = t.Execute(ctx, validated)
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	if err != nil {
		logger.Error(ctx, "Tool execution failed", map[string]interface{}{
			"tool":              t.Name(),
			"error":             err.Error(),
			"execution_time_ms": elapsed,
		})
		result = Errorf("%s", err.Error())
		result.DurationMs = elapsed
		return result
	}

	if result == nil {
		result = NewResult(nil)
	}
	result.DurationMs = elapsed

	logger.Debug(ctx, "Tool executed", map[string]interface{}{
		"tool":              t.Name(),
		"success":           result.Success,
		"execution_time_ms": elapsed,
	})

	return result
}
