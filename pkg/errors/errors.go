package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors.
type ErrorType string

const (
	// ErrorTypeValidation indicates a malformed or unexpected input shape.
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates a failure inside the process.
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates a failure of an external collaborator
	// (Telegram API, spreadsheet, database).
	ErrorTypeExternal ErrorType = "EXTERNAL"

	// ErrorTypeConfig indicates missing or inconsistent configuration;
	// fatal at process start.
	ErrorTypeConfig ErrorType = "CONFIG"
)

// AppError is an application error carrying a classification.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewInternalError creates an internal error wrapping its cause.
func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// NewExternalError creates an external-collaborator error wrapping its cause.
func NewExternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeExternal, Message: message, Err: err}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string) *AppError {
	return &AppError{Type: ErrorTypeConfig, Message: message}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}
