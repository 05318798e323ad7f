package errors

import (
	"errors"
	"net/http"
	"strconv"
)

// ErrorClassifier maps HTTP status codes and raw errors onto tiers.
type ErrorClassifier struct {
	retryableCodes map[int]struct{}
}

// NewErrorClassifier returns a classifier with the default status sets:
// only 429 is retryable, every other failure degrades.
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{
		retryableCodes: map[int]struct{}{
			http.StatusTooManyRequests: {},
		},
	}
}

// ClassifyStatus returns the tier for a non-2xx response status.
func (c *ErrorClassifier) ClassifyStatus(status int) ErrorTier {
	if _, ok := c.retryableCodes[status]; ok {
		return TierRetryable
	}
	return TierDegraded
}

// FromStatus builds a TieredError for a non-2xx response status.
func (c *ErrorClassifier) FromStatus(status int, message string) *TieredError {
	err := NewTieredError(c.ClassifyStatus(status), message, nil)
	err.StatusCode = status
	return err.WithContext("status", strconv.Itoa(status))
}

// Classify returns the tier for an arbitrary error. Existing tiers are
// preserved; transport-level faults and everything else degrade.
func (c *ErrorClassifier) Classify(err error) ErrorTier {
	if err == nil {
		return TierDegraded
	}
	var te *TieredError
	if errors.As(err, &te) {
		return te.Tier
	}
	return TierDegraded
}
