package profileclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Every failure returned by Client is an *APIError that
// unwraps to exactly one of these.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrDuplicateName = errors.New("duplicate profile name")
	ErrValidation    = errors.New("invalid profile")
	ErrNotFound      = errors.New("profile not found")
	ErrNetwork       = errors.New("network error")
)

// APIError describes a failed profile request. Status is zero when no
// response was received.
type APIError struct {
	Status  int
	Type    string
	Field   string
	Message string

	// Err is one of the package sentinels.
	Err error

	// cause is the transport error behind an ErrNetwork, if any.
	cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%v: %s", e.Err, e.Message)
	}
	return fmt.Sprintf("%v (%d): %s", e.Err, e.Status, e.Message)
}

// Unwrap exposes the sentinel and, for transport failures, the cause.
func (e *APIError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

func sentinelFor(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusConflict:
		return ErrDuplicateName
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	case http.StatusNotFound:
		return ErrNotFound
	}
	return ErrNetwork
}
