package errors

import (
	"context"
	"time"
)

// RetryPolicy defines how rate-limited requests are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts (0 means execute once).
	MaxAttempts int `yaml:"max_attempts"`

	// BaseDelay is the backoff unit; attempt n waits BaseDelay * (n+1).
	BaseDelay time.Duration `yaml:"base_delay"`
}

// DefaultGraphPolicy returns the retry budget used by the graph builder.
func DefaultGraphPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 10,
		BaseDelay:   3 * time.Second,
	}
}

// DefaultLookupPolicy returns the smaller budget used by one-shot
// relation lookups.
func DefaultLookupPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   3 * time.Second,
	}
}

// Executor runs operations with tier-aware retry logic: only retryable
// failures consume the budget, anything else aborts on first sight.
type Executor struct {
	policy *RetryPolicy
}

// NewExecutor creates an Executor with the given policy.
func NewExecutor(policy *RetryPolicy) *Executor {
	if policy == nil {
		policy = DefaultGraphPolicy()
	}
	return &Executor{policy: policy}
}

// Execute runs fn until it succeeds, returns a non-retryable error, or
// the attempt budget runs out. Budget exhaustion is reported as a
// Degraded error wrapping the last failure.
func (e *Executor) Execute(ctx context.Context, fn func() error) error {
	if e.policy.MaxAttempts <= 0 {
		return fn()
	}

	var lastErr error
	for attempt := 0; attempt < e.policy.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == e.policy.MaxAttempts-1 {
			break
		}
		if err := waitBeforeRetry(ctx, CalculateDelay(attempt, e.policy)); err != nil {
			return WrapWithTier(TierFatal, "retry wait interrupted", err)
		}
	}

	return NewTieredError(TierDegraded, "retry budget exhausted", lastErr)
}

// waitBeforeRetry waits for the specified delay or returns if context is cancelled.
func waitBeforeRetry(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
