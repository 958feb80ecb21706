package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeConflict   ErrorCode = "CONFLICT"
	CodeAuth       ErrorCode = "AUTH_ERROR"
	CodeStore      ErrorCode = "STORE_ERROR"
	CodeProvider   ErrorCode = "PROVIDER_ERROR"
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
)

// HTTPStatusMap maps error codes to HTTP status codes.
// Validation, conflict and credential failures all surface as 400 to match the
// public API contract; store and provider failures are server-side 500s.
var HTTPStatusMap = map[ErrorCode]int{
	CodeValidation: http.StatusBadRequest,
	CodeConflict:   http.StatusBadRequest,
	CodeAuth:       http.StatusBadRequest,
	CodeStore:      http.StatusInternalServerError,
	CodeProvider:   http.StatusInternalServerError,
	CodeInternal:   http.StatusInternalServerError,
}

// AppError represents an application error with code and message
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Newf creates a new AppError with formatted message
func Newf(code ErrorCode, cause error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// HTTPStatus returns the HTTP status code for this error
func (e *AppError) HTTPStatus() int {
	if status, exists := HTTPStatusMap[e.Code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// AsAppError extracts an AppError from err, wrapping unknown errors as internal
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(CodeInternal, err.Error(), err)
}
