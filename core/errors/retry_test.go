package errors

import (
	"context"
	"errors"
	"testing"
	"time"
)

// =============================================================================
// Delay Schedule Tests
// =============================================================================

func TestCalculateDelay_LinearSchedule(t *testing.T) {
	policy := &RetryPolicy{MaxAttempts: 10, BaseDelay: 3 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 3 * time.Second},
		{1, 6 * time.Second},
		{2, 9 * time.Second},
		{9, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := CalculateDelay(tt.attempt, policy); got != tt.want {
			t.Errorf("CalculateDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestCalculateDelay_NilPolicy(t *testing.T) {
	if got := CalculateDelay(3, nil); got != 0 {
		t.Errorf("CalculateDelay(nil policy) = %v, want 0", got)
	}
}

func TestCalculateDelay_NegativeAttempt(t *testing.T) {
	policy := &RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second}
	if got := CalculateDelay(-1, policy); got != time.Second {
		t.Errorf("CalculateDelay(-1) = %v, want %v", got, time.Second)
	}
}

// =============================================================================
// Policy Tests
// =============================================================================

func TestDefaultPolicies(t *testing.T) {
	graph := DefaultGraphPolicy()
	if graph.MaxAttempts != 10 || graph.BaseDelay != 3*time.Second {
		t.Errorf("graph policy = %+v, want 10 attempts / 3s base", graph)
	}

	lookup := DefaultLookupPolicy()
	if lookup.MaxAttempts != 5 || lookup.BaseDelay != 3*time.Second {
		t.Errorf("lookup policy = %+v, want 5 attempts / 3s base", lookup)
	}
}

// =============================================================================
// Executor Tests
// =============================================================================

func TestExecutor_SuccessOnFirstAttempt(t *testing.T) {
	executor := NewExecutor(nil)
	ctx := context.Background()

	callCount := 0
	err := executor.Execute(ctx, func() error {
		callCount++
		return nil
	})

	if err != nil {
		t.Errorf("Execute() returned error = %v, want nil", err)
	}
	if callCount != 1 {
		t.Errorf("Function called %d times, want 1", callCount)
	}
}

func TestExecutor_RetriesRateLimitedThenSucceeds(t *testing.T) {
	executor := NewExecutor(&RetryPolicy{MaxAttempts: 10, BaseDelay: time.Millisecond})
	ctx := context.Background()

	callCount := 0
	err := executor.Execute(ctx, func() error {
		callCount++
		if callCount < 4 {
			return NewTieredError(TierRetryable, "rate limited", nil)
		}
		return nil
	})

	if err != nil {
		t.Errorf("Execute() returned error = %v, want nil", err)
	}
	// Three 429s then success = 4 total calls
	if callCount != 4 {
		t.Errorf("Function called %d times, want 4", callCount)
	}
}

func TestExecutor_WaitsLinearSchedule(t *testing.T) {
	base := 10 * time.Millisecond
	executor := NewExecutor(&RetryPolicy{MaxAttempts: 10, BaseDelay: base})
	ctx := context.Background()

	callCount := 0
	start := time.Now()
	err := executor.Execute(ctx, func() error {
		callCount++
		if callCount < 4 {
			return NewTieredError(TierRetryable, "rate limited", nil)
		}
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Execute() returned error = %v", err)
	}
	// Waits of 1x + 2x + 3x base = 60ms total
	if want := 6 * base; elapsed < want {
		t.Errorf("elapsed = %v, want at least %v", elapsed, want)
	}
}

func TestExecutor_NonRetryableAbortsImmediately(t *testing.T) {
	executor := NewExecutor(&RetryPolicy{MaxAttempts: 10, BaseDelay: time.Millisecond})
	ctx := context.Background()

	expectedErr := NewTieredError(TierDegraded, "server error", nil)
	callCount := 0

	err := executor.Execute(ctx, func() error {
		callCount++
		return expectedErr
	})

	if !errors.Is(err, expectedErr) {
		t.Errorf("Execute() returned %v, want the degraded error", err)
	}
	if callCount != 1 {
		t.Errorf("Function called %d times, want 1 (no retry for non-429)", callCount)
	}
}

func TestExecutor_PlainErrorAbortsImmediately(t *testing.T) {
	executor := NewExecutor(&RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond})
	ctx := context.Background()

	callCount := 0
	err := executor.Execute(ctx, func() error {
		callCount++
		return errors.New("connection refused")
	})

	if err == nil {
		t.Error("Execute() returned nil, want error")
	}
	if callCount != 1 {
		t.Errorf("Function called %d times, want 1", callCount)
	}
}

func TestExecutor_BudgetExhaustion(t *testing.T) {
	executor := NewExecutor(&RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})
	ctx := context.Background()

	callCount := 0
	err := executor.Execute(ctx, func() error {
		callCount++
		return NewTieredError(TierRetryable, "rate limited", nil)
	})

	if err == nil {
		t.Fatal("Execute() returned nil, want error")
	}
	if callCount != 3 {
		t.Errorf("Function called %d times, want 3 (the whole budget)", callCount)
	}
	// Exhaustion degrades; it must not look retryable to callers
	if GetTier(err) != TierDegraded {
		t.Errorf("tier = %v, want %v", GetTier(err), TierDegraded)
	}
	if !errors.Is(err, ErrRetryBudgetExhausted) {
		t.Error("errors.Is(err, ErrRetryBudgetExhausted) = false")
	}
}

func TestExecutor_ZeroMaxAttempts(t *testing.T) {
	executor := NewExecutor(&RetryPolicy{MaxAttempts: 0, BaseDelay: time.Second})
	ctx := context.Background()

	callCount := 0
	err := executor.Execute(ctx, func() error {
		callCount++
		return NewTieredError(TierRetryable, "rate limited", nil)
	})

	if err == nil {
		t.Error("Execute() returned nil, want error")
	}
	if callCount != 1 {
		t.Errorf("Function called %d times, want 1 (zero max attempts means execute once)", callCount)
	}
}

func TestExecutor_ContextCanceledDuringWait(t *testing.T) {
	executor := NewExecutor(&RetryPolicy{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	callCount := 0

	err := executor.Execute(ctx, func() error {
		callCount++
		if callCount == 1 {
			cancel() // Cancel during first retry wait
		}
		return NewTieredError(TierRetryable, "rate limited", nil)
	})

	if err == nil {
		t.Error("Execute() returned nil, want error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() returned %v, want context.Canceled in chain", err)
	}
	if callCount > 1 {
		t.Errorf("Function called %d times, should stop during first wait", callCount)
	}
}
