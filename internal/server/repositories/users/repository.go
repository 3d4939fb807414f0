// Package users stores the authoritative user collection.
package users

import (
	"context"

	"rosterkeeper/internal/server/models"
)

// Repository persists users.
type Repository interface {
	// Create stores a new user. A taken username returns
	// common.ErrDuplicate, an unknown group common.ErrNotFound.
	Create(ctx context.Context, u models.User) (models.User, error)

	// Update overwrites the user record and advances last_modified_at.
	Update(ctx context.Context, u models.User) (models.User, error)

	// Delete removes a user. Unknown ids return common.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// GetByID returns one user or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (models.User, error)

	// GetAll lists every user.
	GetAll(ctx context.Context) ([]models.User, error)
}
