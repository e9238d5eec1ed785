package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy of the core. Validation and not-found problems are
// surfaced to the caller unchanged; precondition failures signal a lost
// optimistic-concurrency race and are either absorbed (penalty engine) or
// retried (loan approval booking).
var (
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrNoApprovers        = errors.New("no active admins to approve the request")
	ErrUnknownVoter       = errors.New("admin is not part of the approval snapshot")
	ErrRequestTerminal    = errors.New("loan request is already decided")
)

// ValidationError reports malformed or out-of-range input. It is always
// raised before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
