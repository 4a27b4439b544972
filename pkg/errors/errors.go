package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInvalidCoordinate indicates a latitude/longitude outside the valid range
	ErrorTypeInvalidCoordinate ErrorType = "INVALID_COORDINATE"

	// ErrorTypeStoreUnavailable indicates the interaction store backend cannot be reached
	ErrorTypeStoreUnavailable ErrorType = "STORE_UNAVAILABLE"

	// ErrorTypeInsufficientHistory indicates a user is below the minimum-interaction threshold
	ErrorTypeInsufficientHistory ErrorType = "INSUFFICIENT_HISTORY"

	// ErrorTypeMalformedInteraction indicates a tracked event is missing required fields
	ErrorTypeMalformedInteraction ErrorType = "MALFORMED_INTERACTION"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from external service
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an AppError of the given type anywhere in its chain
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInvalidCoordinateError creates a new invalid coordinate error
func NewInvalidCoordinateError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidCoordinate,
		Message: message,
	}
}

// NewStoreUnavailableError creates a new store unavailable error
func NewStoreUnavailableError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeStoreUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewInsufficientHistoryError creates a new insufficient history error
func NewInsufficientHistoryError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInsufficientHistory,
		Message: message,
	}
}

// NewMalformedInteractionError creates a new malformed interaction error
func NewMalformedInteractionError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeMalformedInteraction,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}
