// Package session defines the server-side session contract.
//
// The browser used to keep the bearer token in local storage; the gateway
// replaces that with an explicit session object created on login, read-only
// until logout, and destroyed on logout or an upstream 401.
package session

import (
	"context"
	"time"

	"github.com/kinetiq/gaitway/internal/domain/token"
)

// Session binds a gateway session id to the upstream bearer token and its
// decoded claims.
type Session struct {
	ID        string
	Token     string // upstream bearer token, opaque to the gateway
	Claims    token.Claims
	CreatedAt time.Time
	LastSeen  time.Time
}

// Store provides access to live sessions.
type Store interface {
	// Create mints a new session for an upstream token.
	Create(ctx context.Context, bearer string, claims token.Claims) (Session, error)

	// Get returns the session for id and marks it as seen. Unknown or
	// expired ids yield the store's not-found error; the in-memory store
	// returns repository.ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)

	// Revoke destroys the session for id. Revoking an unknown id is a no-op.
	Revoke(ctx context.Context, id string)

	// Count returns the number of live sessions.
	Count(ctx context.Context) int
}
