package service

import "errors"

// Sentinel kinds for application errors.
var (
	// ErrNoSession means the caller presented no session id or an unknown one.
	ErrNoSession = errors.New("no active session")

	// ErrSessionExpired means the upstream rejected the session's token.
	// The session is destroyed before this is returned.
	ErrSessionExpired = errors.New("session expired")

	// ErrTooManySessions means the session store is at capacity.
	ErrTooManySessions = errors.New("too many active sessions")

	// ErrNoPatientRecord means no patient profile could be resolved for the
	// logged-in user. Dependent views abort rather than guessing an id.
	ErrNoPatientRecord = errors.New("no patient record found for this account")

	// ErrInvalidInput covers pre-network validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
