// Package guardrails screens text and tool selections crossing the model
// boundary: blocked-content filtering, credential redaction, and tool
// allow-lists.
package guardrails

import (
	"context"
	"errors"
)

// ErrBlocked is returned when a guardrail with ActionBlock triggers
var ErrBlocked = errors.New("request blocked by guardrails")

// Action is what happens when a guardrail triggers
type Action string

// Guardrail actions
const (
	// ActionBlock rejects the text outright
	ActionBlock Action = "block"
	// ActionRedact passes the text through with the offending parts replaced
	ActionRedact Action = "redact"
)

// Guardrail checks a piece of text and optionally rewrites it
type Guardrail interface {
	// Name identifies the guardrail in logs
	Name() string

	// Check reports whether the text triggered the guardrail and returns
	// the (possibly rewritten) text
	Check(ctx context.Context, text string) (triggered bool, modified string, err error)

	// Action returns what to do when the guardrail triggers
	Action() Action
}

// Pipeline runs a chain of guardrails over input and output text. It
// implements interfaces.Guardrails.
type Pipeline struct {
	input  []Guardrail
	output []Guardrail
}

// NewPipeline creates a pipeline. Input guardrails screen user text before
// the model sees it, output guardrails screen model text before the user
// sees it.
func NewPipeline(input, output []Guardrail) *Pipeline {
	return &Pipeline{input: input, output: output}
}

// ProcessInput runs the input chain
func (p *Pipeline) ProcessInput(ctx context.Context, input string) (string, error) {
	return run(ctx, p.input, input)
}

// ProcessOutput runs the output chain
func (p *Pipeline) ProcessOutput(ctx context.Context, output string) (string, error) {
	return run(ctx, p.output, output)
}

func run(ctx context.Context, chain []Guardrail, text string) (string, error) {
	current := text
	for _, g := range chain {
		triggered, modified, err := g.Check(ctx, current)
		if err != nil {
			return "", err
		}
		if !triggered {
			continue
		}
		if g.Action() == ActionBlock {
			return "", ErrBlocked
		}
		current = modified
	}
	return current, nil
}
