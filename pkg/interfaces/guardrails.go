package interfaces

import "context"

// Guardrails screens text crossing the model boundary
type Guardrails interface {
	// ProcessInput screens user input before it reaches the model
	ProcessInput(ctx context.Context, input string) (string, error)

	// ProcessOutput screens model output before it reaches the user
	ProcessOutput(ctx context.Context, output string) (string, error)
}
