package errors

import (
	"net/http"

	"booksum/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-safe message
	Details() string   // Server-side detail (optional, never sent for store/internal kinds)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-safe message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Predefined error types. Messages double as the caller-visible result text.
var (
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Validation failed",
		"",
	)

	ErrDuplicateEmail = NewBaseError(
		http.StatusConflict,
		"EMAIL_ALREADY_REGISTERED",
		"Email already registered",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid credentials",
		"",
	)

	ErrRateLimited = NewBaseError(
		http.StatusTooManyRequests,
		"TOO_MANY_ATTEMPTS",
		"Too many failed attempts. Try again later.",
		"",
	)

	ErrUnauthenticated = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHENTICATED",
		"Not logged in",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal error",
		"",
	)
)

// StoreError wraps any persistence fault other than a uniqueness violation:
// connectivity, timeouts, driver errors. Its message is always the generic
// "Database error"; the wrapped cause is for server-side logs only.
type StoreError struct {
	err     error
	details string
}

// NewStoreError creates a store-related error
func NewStoreError(err error, details string) *StoreError {
	return &StoreError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StoreError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error to errors.Is / errors.As.
func (e *StoreError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *StoreError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *StoreError) ErrorCode() string {
	return "DATABASE_ERROR"
}

// Message returns the user-safe message
func (e *StoreError) Message() string {
	return "Database error"
}

// Details returns detailed error information
func (e *StoreError) Details() string {
	return e.details
}

// IsStoreError reports whether err carries a StoreError anywhere in its chain.
func IsStoreError(err error) bool {
	var storeErr *StoreError

	return errors.As(err, &storeErr)
}
