package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Executor runs operations under a retry policy with exponential backoff
type Executor struct {
	policy *Policy
}

// NewExecutor creates an executor for the given policy
func NewExecutor(policy *Policy) *Executor {
	if policy == nil {
		policy = NewPolicy()
	}
	return &Executor{policy: policy}
}

// Execute runs fn, retrying transient failures per the policy. The context
// bounds the whole attempt sequence.
func (e *Executor) Execute(ctx context.Context, fn func() error) error {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = e.policy.InitialInterval
	exponential.Multiplier = e.policy.BackoffCoefficient
	exponential.MaxInterval = e.policy.MaximumInterval
	exponential.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	var b backoff.BackOff = exponential
	if e.policy.MaximumAttempts > 0 {
		b = backoff.WithMaxRetries(exponential, uint64(e.policy.MaximumAttempts-1))
	}

	return backoff.Retry(fn, backoff.WithContext(b, ctx))
}

// Permanent marks an error as non-retryable
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Interval reports the configured initial interval, useful for logging
func (e *Executor) Interval() time.Duration {
	return e.policy.InitialInterval
}
