package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type SecmasterError struct {
	Message string
	Cause   error
}

func (e *SecmasterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SecmasterError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As classification
type ConfigurationError struct{ SecmasterError }
type NetworkError struct{ SecmasterError }
type DatabaseError struct{ SecmasterError }
type ValidationError struct{ SecmasterError }

// UpstreamStatusError is a non-success HTTP status from an upstream API.
type UpstreamStatusError struct {
	SecmasterError
	StatusCode int
}

// -----------------------------------------------------------------------------

func NewConfigurationError(msg string, cause error) error {
	return &ConfigurationError{SecmasterError{Message: msg, Cause: cause}}
}

func NewNetworkError(msg string, cause error) error {
	return &NetworkError{SecmasterError{Message: msg, Cause: cause}}
}

func NewDatabaseError(msg string, cause error) error {
	return &DatabaseError{SecmasterError{Message: msg, Cause: cause}}
}

func NewValidationError(msg string, cause error) error {
	return &ValidationError{SecmasterError{Message: msg, Cause: cause}}
}

func NewUpstreamStatusError(url string, status int) error {
	return &UpstreamStatusError{
		SecmasterError: SecmasterError{Message: fmt.Sprintf("bad status %d from %s", status, url)},
		StatusCode:     status,
	}
}

// -----------------------------------------------------------------------------

// Kind names the error category for logs and run reports.
func Kind(err error) string {
	var (
		cfgErr    *ConfigurationError
		netErr    *NetworkError
		statusErr *UpstreamStatusError
		dbErr     *DatabaseError
		valErr    *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return "upstream_status"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &dbErr):
		return "database"
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &valErr):
		return "validation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// Permanent marks an error that must not be retried.
type Permanent struct{ Err error }

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// RetryWithBackoff runs fn up to maxAttempts times, doubling baseDelay between
// attempts. It stops early on a *Permanent error or when ctx is done.
func RetryWithBackoff(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func(attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := baseDelay * (1 << (attempt - 1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}

		var perm *Permanent
		if errors.As(err, &perm) {
			return perm.Err
		}
		lastErr = err
	}

	return lastErr
}
