// Package tokens stores bearer credentials obtained from the backend.
package tokens

import (
	"context"
	"time"
)

// AuthTokenKey is the store key under which the session bearer token lives.
const AuthTokenKey = "auth_token"

// Token is a stored credential.
type Token struct {
	Key       string
	Value     string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry in the past.
// A zero ExpiresAt means the token does not expire.
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// Repository describes the credential store consulted before any
// authenticated backend call.
type Repository interface {
	// Put stores or replaces a token by key.
	Put(ctx context.Context, t Token) error

	// Get returns the token stored under key, if any.
	Get(ctx context.Context, key string) (Token, bool, error)

	// Delete removes the token stored under key.
	Delete(ctx context.Context, key string) error
}
