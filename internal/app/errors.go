package service

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel kinds for ingestion errors. Handlers match on these to pick
// status codes.
var (
	ErrValidation  = errors.New("invalid event submission")
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError wraps the specific field failure behind the
// ErrValidation kind. Callers must fix and resubmit; the submission is
// never retried as-is.
type ValidationError struct {
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event submission: %v", e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RateLimitedError tells the caller how long to wait before retrying.
// The delay is the remainder of the submitter's current window.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }
