// Package groups stores the authoritative group collection.
package groups

import (
	"context"

	"rosterkeeper/internal/server/models"
)

// Repository persists groups.
type Repository interface {
	// Create stores a new group. A taken name returns common.ErrDuplicate.
	Create(ctx context.Context, g models.Group) (models.Group, error)

	// Update overwrites name and description and advances
	// last_modified_at. Unknown ids return common.ErrNotFound.
	Update(ctx context.Context, g models.Group) (models.Group, error)

	// Delete removes a group. Unknown ids return common.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// GetByID returns one group or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (models.Group, error)

	// GetAll lists every group.
	GetAll(ctx context.Context) ([]models.Group, error)
}
