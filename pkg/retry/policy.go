package retry

import "time"

// Policy bounds a retry sequence. The zero value is not usable; build one
// with NewPolicy so the model-client defaults apply.
type Policy struct {
	// InitialInterval is the delay before the first retry
	InitialInterval time.Duration

	// BackoffCoefficient multiplies the delay after each failed attempt
	BackoffCoefficient float64

	// MaximumInterval caps the delay between attempts
	MaximumInterval time.Duration

	// MaximumAttempts counts the first call too; 0 means retry until the
	// context is done
	MaximumAttempts int32
}

// Option configures a Policy
type Option func(*Policy)

// WithInitialInterval sets the delay before the first retry
func WithInitialInterval(interval time.Duration) Option {
	return func(p *Policy) {
		p.InitialInterval = interval
	}
}

// WithBackoffCoefficient sets the per-attempt delay multiplier
func WithBackoffCoefficient(coefficient float64) Option {
	return func(p *Policy) {
		p.BackoffCoefficient = coefficient
	}
}

// WithMaximumInterval caps the delay between attempts
func WithMaximumInterval(interval time.Duration) Option {
	return func(p *Policy) {
		p.MaximumInterval = interval
	}
}

// WithMaxAttempts sets the total attempt budget
func WithMaxAttempts(attempts int32) Option {
	return func(p *Policy) {
		p.MaximumAttempts = attempts
	}
}

// NewPolicy builds a policy. The defaults suit throttled model APIs: a
// short first pause that doubles per attempt, with a small attempt budget
// so a hard outage fails the call instead of stalling the conversation.
func NewPolicy(opts ...Option) *Policy {
	policy := &Policy{
		InitialInterval:    500 * time.Millisecond,
		BackoffCoefficient: 2.0,
		MaximumInterval:    30 * time.Second,
		MaximumAttempts:    4,
	}

	for _, opt := range opts {
		opt(policy)
	}

	return policy
}
