package apperrors

import (
	"errors"
	"fmt"
)

// AppError wraps a lower-level failure with an HTTP-ish status code and a
// message suitable for logging. Repositories use it so that handlers never
// see raw driver errors.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound via errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// Is lets sentinel comparisons see through the AppError wrapper.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
