package task

import (
	"errors"
	"fmt"
)

// Code categorizes a task error.
type Code string

const (
	// CodeValidation indicates malformed input. The caller must fix the
	// input; retrying unchanged input fails the same way.
	CodeValidation Code = "VALIDATION"

	// CodeNotFound indicates the referenced task does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeConflict indicates a name already held by another task.
	CodeConflict Code = "CONFLICT"

	// CodeInvariantViolation indicates a rank batch that would leave the
	// ranks non-dense or duplicated. It points at a bug, not at user input.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// CodeBusy indicates the storage lock could not be acquired in time.
	// The operation had no effect and may be retried.
	CodeBusy Code = "BUSY"
)

// Error is the error type returned by stores, the ordering engine and the
// service for every failure the caller can act on. Infrastructure failures
// that fit none of the codes are returned as plain wrapped errors.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Field names the offending input field (validation errors).
	Field string

	// ID identifies the task involved, when there is one.
	ID string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ID != "" {
		msg = fmt.Sprintf("%s (task=%s)", msg, e.ID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "" when
// err is nil or carries no code.
func CodeOf(err error) Code {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsConflict reports whether err is a name conflict.
func IsConflict(err error) bool { return CodeOf(err) == CodeConflict }

// IsInvariantViolation reports whether err is a rank invariant violation.
func IsInvariantViolation(err error) bool { return CodeOf(err) == CodeInvariantViolation }

// IsBusy reports whether err is a retryable lock timeout.
func IsBusy(err error) bool { return CodeOf(err) == CodeBusy }

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: message}
}

// NewNotFoundError creates a not-found error for the task with id.
func NewNotFoundError(id string) *Error {
	return &Error{Code: CodeNotFound, Message: "task not found", ID: id}
}

// NewNameNotFoundError creates a not-found error for a lookup by name.
func NewNameNotFoundError(name string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("no task named %q", name)}
}

// NewConflictError creates a conflict error for a duplicate name.
func NewConflictError(name string) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf("a task named %q already exists", name)}
}

// NewInvariantError creates an invariant violation.
func NewInvariantError(message string) *Error {
	return &Error{Code: CodeInvariantViolation, Message: message}
}

// NewBusyError wraps a storage lock timeout.
func NewBusyError(op string, err error) *Error {
	return &Error{Code: CodeBusy, Message: op + ": storage is busy, retry later", Err: err}
}
