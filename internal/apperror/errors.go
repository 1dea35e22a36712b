// Package apperror provides the domain error type returned by services and
// handlers. Each error carries an HTTP status code, a machine-readable type
// and a message that is safe to show to the client; the Echo error handler
// in internal/app turns them into JSON responses.
//
// Raw database or Redis errors never reach the client. Wrap them with
// NewInternal, which keeps the cause for logging only.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error types. Clients switch on these, so they are part of
// the API contract.
const (
	TypeNotFound      = "not_found"
	TypeBadRequest    = "bad_request"
	TypeUnauthorized  = "unauthorized"
	TypeForbidden     = "forbidden"
	TypeConflict      = "conflict"
	TypeDuplicateName = "duplicate_name"
	TypeValidation    = "validation_error"
	TypeInternal      = "internal_error"
)

// AppError is the base error type for all domain errors.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 409, 422).
	Code int `json:"-"`

	// Type is one of the Type* constants.
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Field names the request field at fault, when there is one. Lets a
	// form highlight the offending input instead of showing a banner.
	Field string `json:"field,omitempty"`

	// Internal holds the underlying error for logging. Never exposed to client.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// WithField returns a copy of e attributed to a request field.
func (e *AppError) WithField(field string) *AppError {
	cp := *e
	cp.Field = field
	return &cp
}

// --- Constructors ---

// NewNotFound creates a 404 Not Found error.
func NewNotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Type: TypeNotFound, Message: message}
}

// NewBadRequest creates a 400 Bad Request error for malformed input.
func NewBadRequest(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: TypeBadRequest, Message: message}
}

// NewUnauthorized creates a 401 Unauthorized error.
func NewUnauthorized(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Type: TypeUnauthorized, Message: message}
}

// NewForbidden creates a 403 Forbidden error.
func NewForbidden(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Type: TypeForbidden, Message: message}
}

// NewConflict creates a 409 Conflict error.
func NewConflict(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Type: TypeConflict, Message: message}
}

// NewDuplicateName creates a 409 error for a name that is already taken by
// the same owner. It is reported separately from NewConflict so clients can
// attribute it to the name field.
func NewDuplicateName(field, message string) *AppError {
	return &AppError{Code: http.StatusConflict, Type: TypeDuplicateName, Message: message, Field: field}
}

// NewValidation creates a 422 Unprocessable Entity error for well-formed
// input with out-of-range values.
func NewValidation(message string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Type: TypeValidation, Message: message}
}

// errMissingContext is the shared internal error for nil precondition checks.
var errMissingContext = errors.New("missing required context")

// NewMissingContext creates a 500 error for handler nil-context guards
// (e.g. user id not set because the auth middleware was not applied).
func NewMissingContext() *AppError {
	return NewInternal(errMissingContext)
}

// NewInternal creates a 500 Internal Server Error. The real error is stored
// in Internal for logging but the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     TypeInternal,
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// --- Inspection helpers ---

// SafeMessage returns the client-safe message of err, or a generic message
// for anything that is not an AppError.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status code of err, or 500.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, typ string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == typ
}
