package backend

import (
	"errors"
	"fmt"
)

// Sentinel kinds for upstream failures.
var (
	// ErrUnauthorized maps any upstream 401. The app layer reacts by
	// destroying the caller's session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound maps upstream 404s, e.g. a missing patient profile.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable covers transport-level failures before a status code
	// exists.
	ErrUnavailable = errors.New("backend unavailable")
)

// APIError carries a non-2xx upstream response. Detail holds the
// server-provided message when present so callers can surface it verbatim.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Message returns the text to surface to the UI: the server detail when
// present, a generic fallback otherwise.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "Request failed. Please try again."
}
