package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the actor's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a malformed or out-of-range field. Batch operations
// recover from it per row; single-item operations surface it to the caller.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: field %q %s", e.Field, e.Constraint)
}

// Validation builds a ValidationError.
func Validation(field, constraint string) *ValidationError {
	return &ValidationError{Field: field, Constraint: constraint}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InvalidStateError reports a disallowed lifecycle transition. It names both
// the current and the attempted state and is never retried automatically.
type InvalidStateError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid state: %s cannot move %s -> %s: %s", e.Entity, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid state: %s cannot move %s -> %s", e.Entity, e.From, e.To)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var se *InvalidStateError
	return errors.As(err, &se)
}

// ConsistencyError marks a persisted record whose stored derived fields
// disagree with a re-derivation. The record must be flagged for audit, never
// silently corrected.
type ConsistencyError struct {
	Entity string
	Ref    string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency: %s %s: %s", e.Entity, e.Ref, e.Detail)
}

// IsConsistency reports whether err is a ConsistencyError.
func IsConsistency(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
