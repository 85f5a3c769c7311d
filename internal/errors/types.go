package errors

import (
	"errors"
	"fmt"
	"net"
)

// RateLimitedError signals provider quota or rate exhaustion. It is surfaced
// to the caller as a distinct, retryable condition but is never retried
// automatically by this process.
type RateLimitedError struct {
	Err        error
	StatusCode int
	RetryAfter int // Seconds to wait before retry (from Retry-After header)
}

func (e *RateLimitedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rate limited: %v", e.Err)
	}
	return "rate limited"
}

func (e *RateLimitedError) Unwrap() error {
	return e.Err
}

// TransientError represents an error that can be retried
type TransientError struct {
	Err        error
	StatusCode int    // HTTP status code if applicable
	Message    string // User-friendly message
}

func (e *TransientError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("transient error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError represents an error that should not be retried
type PermanentError struct {
	Err        error
	StatusCode int
	Message    string
}

func (e *PermanentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("permanent error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// IsRateLimited checks whether the error chain contains a RateLimitedError.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}

// IsTransient checks if an error is retry-able. Rate-limit errors are
// deliberately excluded: they are retryable by the caller, not by us.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if IsRateLimited(err) {
		return false
	}

	var transientErr *TransientError
	if errors.As(err, &transientErr) {
		return true
	}

	var permanentErr *PermanentError
	if errors.As(err, &permanentErr) {
		return false
	}

	// Network errors (connection refused, timeout, etc.)
	return isNetworkError(err)
}

// IsPermanent checks if an error is non-retry-able
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var permanentErr *PermanentError
	return errors.As(err, &permanentErr)
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// FromHTTPStatus classifies an HTTP status code from the completion provider
// into the error taxonomy.
func FromHTTPStatus(status int, cause error) error {
	switch {
	case status == 429:
		return &RateLimitedError{Err: cause, StatusCode: status}
	case status >= 500:
		return &TransientError{Err: cause, StatusCode: status}
	default:
		return &PermanentError{Err: cause, StatusCode: status}
	}
}

// Helper constructors

// NewRateLimitedError creates a rate-limit error with an optional Retry-After hint.
func NewRateLimitedError(err error, retryAfter int) *RateLimitedError {
	return &RateLimitedError{Err: err, StatusCode: 429, RetryAfter: retryAfter}
}

// NewTransientError creates a new transient error with a user-friendly message
func NewTransientError(err error, message string) *TransientError {
	return &TransientError{Err: err, Message: message}
}

// NewPermanentError creates a new permanent error with a user-friendly message
func NewPermanentError(err error, message string) *PermanentError {
	return &PermanentError{Err: err, Message: message}
}
