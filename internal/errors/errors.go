package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four failure classes the core can report.
// Callers branch with errors.Is; messages carry the specifics.
var (
	// ErrNotFound means a referenced id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOperation means the operation is not legal for the
	// current state, e.g. rating a user-authored message.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrQuotaExceeded means the daily message limit is exhausted.
	// The send is rejected before any message is created.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrGenerationFailed means the external responder returned an error.
	ErrGenerationFailed = errors.New("generation failed")
)

// NotFoundf builds an ErrNotFound with context.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidOperationf builds an ErrInvalidOperation with context.
func InvalidOperationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidOperation)...)
}

// QuotaExceededf builds an ErrQuotaExceeded with context.
func QuotaExceededf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrQuotaExceeded)...)
}

// GenerationFailedf wraps a responder failure so callers can both test
// for ErrGenerationFailed and unwrap the underlying cause.
func GenerationFailedf(cause error) error {
	return fmt.Errorf("%w: %v", ErrGenerationFailed, cause)
}
