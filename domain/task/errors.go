package task

import "errors"

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrForbidden is returned when the caller is not the owner of the task.
	ErrForbidden = errors.New("caller is not the task owner")
	// ErrConflict is returned when an insert collides on id or an update
	// raced with a concurrent write.
	ErrConflict = errors.New("task was modified by another request")
)

// ValidationError reports a rejected field before any store access.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation failed: " + e.Field + " " + e.Reason
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
