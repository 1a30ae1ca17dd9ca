// Package errors provides the registry's structured error type.
//
// Every domain failure is an *AppError carrying a machine-readable code, a
// human-readable message naming the entity, and the HTTP status it maps to.
// Domain errors wrap one of the sentinels below so callers can branch with
// errors.Is without parsing codes.
//
// Import Path: landledger.io/registry/internal/pkg/errors
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure taxonomy.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

// AppError is a structured application error with HTTP status and error code.
type AppError struct {
	// Code is a machine-readable error code (e.g., "DEED_NOT_FOUND").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// HTTPStatus is the corresponding HTTP status code.
	HTTPStatus int `json:"-"`

	// Params carries the identifiers involved in the failure.
	Params map[string]interface{} `json:"params,omitempty"`

	// FieldErrors carries field-level validation details.
	FieldErrors []FieldError `json:"field_errors,omitempty"`

	// Err is the wrapped underlying error.
	Err error `json:"-"`
}

// FieldError describes a field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an existing error into an AppError.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// WithParams attaches structured parameters to the error.
func (e *AppError) WithParams(params map[string]interface{}) *AppError {
	if e == nil || len(params) == 0 {
		return e
	}
	e.Params = params
	return e
}

// WithFieldErrors attaches field-level errors to the AppError.
func (e *AppError) WithFieldErrors(fieldErrors []FieldError) *AppError {
	if e == nil || len(fieldErrors) == 0 {
		return e
	}
	e.FieldErrors = fieldErrors
	return e
}

// NotFound creates a 404 error wrapping ErrNotFound.
func NotFound(code, message string) *AppError {
	return Wrap(ErrNotFound, code, message, http.StatusNotFound)
}

// Conflict creates a 409 error wrapping ErrConflict.
func Conflict(code, message string) *AppError {
	return Wrap(ErrConflict, code, message, http.StatusConflict)
}

// InvalidState creates a 409 error wrapping ErrInvalidState.
func InvalidState(code, message string) *AppError {
	return Wrap(ErrInvalidState, code, message, http.StatusConflict)
}

// BadRequest creates a 400 error wrapping ErrValidation.
func BadRequest(code, message string) *AppError {
	return Wrap(ErrValidation, code, message, http.StatusBadRequest)
}

// Unauthorized creates a 401 error wrapping ErrUnauthorized.
func Unauthorized(code, message string) *AppError {
	return Wrap(ErrUnauthorized, code, message, http.StatusUnauthorized)
}

// Internal creates an opaque 500 error. The cause is kept for logging only.
func Internal(cause error) *AppError {
	if cause == nil {
		cause = ErrInternal
	}
	return Wrap(cause, CodeInternal, "an internal error occurred", http.StatusInternalServerError)
}

// IsAppError checks if an error is an AppError and returns it.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
