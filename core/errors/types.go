// Package errors implements a 3-tier error taxonomy for crawl failures.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorTier classifies a failure by how the crawl responds to it.
type ErrorTier int

const (
	// TierRetryable indicates failures that resolve by waiting and retrying.
	// Examples: HTTP 429 from the bibliographic API.
	TierRetryable ErrorTier = iota

	// TierDegraded indicates failures absorbed by dropping the offending
	// unit of work. Examples: a failed relation page, a malformed entry,
	// an exhausted retry budget. The build continues without the unit.
	TierDegraded

	// TierFatal indicates failures that abort the whole build.
	// Examples: seed publication not found.
	TierFatal
)

var tierNames = map[ErrorTier]string{
	TierRetryable: "retryable",
	TierDegraded:  "degraded",
	TierFatal:     "fatal",
}

func (t ErrorTier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "unknown"
}

// TieredError wraps an error with tier classification.
type TieredError struct {
	Tier       ErrorTier
	Message    string
	Underlying error
	StatusCode int
	Context    map[string]string
}

// Error implements the error interface.
func (e *TieredError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Tier, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s] %s", e.Tier, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *TieredError) Unwrap() error {
	return e.Underlying
}

// Is checks if the target error matches this TieredError's tier.
func (e *TieredError) Is(target error) bool {
	var te *TieredError
	if errors.As(target, &te) {
		return e.Tier == te.Tier
	}
	return false
}

// NewTieredError creates a new TieredError with the given tier and message.
func NewTieredError(tier ErrorTier, message string, underlying error) *TieredError {
	return &TieredError{
		Tier:       tier,
		Message:    message,
		Underlying: underlying,
		Context:    make(map[string]string),
	}
}

// WithStatusCode adds an HTTP status code to the error.
func (e *TieredError) WithStatusCode(code int) *TieredError {
	e.StatusCode = code
	return e
}

// WithContext adds context key-value pairs to the error.
func (e *TieredError) WithContext(key, value string) *TieredError {
	e.Context[key] = value
	return e
}

// GetTier extracts the ErrorTier from an error, defaulting to Degraded:
// an unclassified failure drops its unit of work rather than aborting.
func GetTier(err error) ErrorTier {
	var te *TieredError
	if errors.As(err, &te) {
		return te.Tier
	}
	return TierDegraded
}

// IsRetryable checks if an error should be retried after a backoff wait.
func IsRetryable(err error) bool {
	return GetTier(err) == TierRetryable
}

// IsFatal checks if an error aborts the whole build.
func IsFatal(err error) bool {
	return GetTier(err) == TierFatal
}

// Common sentinel errors.
var (
	// ErrRateLimited signals an HTTP 429 from the API.
	ErrRateLimited = NewTieredError(TierRetryable, "rate limited", nil).WithStatusCode(http.StatusTooManyRequests)

	// ErrRetryBudgetExhausted signals that every attempt was rate limited.
	ErrRetryBudgetExhausted = NewTieredError(TierDegraded, "retry budget exhausted", nil)

	// ErrSeedNotFound signals that the title search matched nothing.
	ErrSeedNotFound = NewTieredError(TierFatal, "seed publication not found", nil)
)

// WrapWithTier wraps an error with a tier classification.
func WrapWithTier(tier ErrorTier, message string, err error) error {
	if err == nil {
		return nil
	}

	// Don't double-wrap TieredErrors
	var te *TieredError
	if errors.As(err, &te) {
		// Preserve existing tier if wrapping
		return &TieredError{
			Tier:       te.Tier,
			Message:    message,
			Underlying: err,
			StatusCode: te.StatusCode,
			Context:    te.Context,
		}
	}

	return NewTieredError(tier, message, err)
}
