package interfaces

import "context"

// ModelMessage is a single role/content pair sent to the model
type ModelMessage struct {
	// Role is the role of the message sender (e.g., "user", "assistant")
	Role string

	// Content is the text content of the message
	Content string
}

// ModelRequest is a single invocation of the hosted model
type ModelRequest struct {
	// System is the system instruction for the model
	System string

	// Messages is the ordered conversation handed to the model
	Messages []ModelMessage

	// MaxTokens caps the size of the generated output
	MaxTokens int
}

// ModelClient represents a hosted large-language-model provider.
// Implementations are free to retry internally; callers treat any returned
// error as a degraded path, never as a crash.
type ModelClient interface {
	// Invoke sends one request to the model and returns the raw text payload
	Invoke(ctx context.Context, req ModelRequest) (string, error)

	// ModelID returns the identifier of the underlying model
	ModelID() string
}
