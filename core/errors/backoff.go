package errors

import "time"

// CalculateDelay computes the wait before retrying a rate-limited attempt.
// Formula: delay = base * (attempt + 1), so consecutive 429s wait 3s, 6s,
// 9s... under the default 3-second base.
func CalculateDelay(attempt int, policy *RetryPolicy) time.Duration {
	if policy == nil || policy.BaseDelay <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	return policy.BaseDelay * time.Duration(attempt+1)
}
