package response

import (
	"net/http"

	domainerrors "booksum/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// Response unified API response structure
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`    // HTTP status code
	Message string     `json:"message"` // User-facing message
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo detailed error information
type ErrorInfo struct {
	Code    string `json:"code"` // Business error code, e.g., "EMAIL_ALREADY_REGISTERED"
	Details string `json:"details,omitempty"`
}

// Success successful response
func Success(c echo.Context, statusCode int, data any, message string) error {
	if message == "" {
		message = "Success"
	}

	return c.JSON(statusCode, Response{
		Success: true,
		Code:    statusCode,
		Message: message,
		Data:    data,
	})
}

// Error error response
func Error(c echo.Context, statusCode int, errorCode string, message string, details string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, Response{
		Success: false,
		Code:    statusCode,
		Message: message,
		Error: &ErrorInfo{
			Code:    errorCode,
			Details: details,
		},
	})
}

// AppError renders a domain error. A non-empty message overrides the error's own.
// Details are never sent for 5xx errors.
func AppError(c echo.Context, appErr domainerrors.AppError, message string) error {
	if message == "" {
		message = appErr.Message()
	}

	details := appErr.Details()
	if appErr.HTTPCode() >= http.StatusInternalServerError {
		details = ""
	}

	return Error(c, appErr.HTTPCode(), appErr.ErrorCode(), message, details)
}

// BindingError binding error response
func BindingError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, "")
}
