package interfaces

import "context"

// Tracer opens spans around the orchestration loop's external calls. The
// agent depends on this port, not on a tracing SDK, so tracing stays
// optional per deployment.
type Tracer interface {
	// StartSpan opens a span and returns the context carrying it
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span is one traced operation
type Span interface {
	// End closes the span
	End()

	// AddEvent records a point-in-time event on the span
	AddEvent(name string, attributes map[string]interface{})

	// SetAttribute annotates the span
	SetAttribute(key string, value interface{})
}
