// Package accounts stores API logins.
package accounts

import (
	"context"

	"rosterkeeper/internal/server/models"
)

// Repository persists accounts.
type Repository interface {
	// Create stores a new account. A taken username returns
	// common.ErrDuplicate.
	Create(ctx context.Context, username, passwordHash string) (models.Account, error)

	// GetByUsername returns the account owning a username, or
	// common.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (models.Account, error)
}
