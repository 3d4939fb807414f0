package groups

import (
	"context"

	"rosterkeeper/internal/client/models"
)

// Repository describes persistence and query operations for Group records.
// Implementations are typically backed by the local SQLite database.
//
// Every call is atomic with respect to a single record; SaveAll is a batch
// helper, not a transaction.
type Repository interface {
	// Save upserts a group by its local id and returns the persisted record.
	// Records failing models.Group.Validate are rejected.
	Save(ctx context.Context, g models.Group) (models.Group, error)

	// SaveAll upserts every group in order, stopping at the first error.
	SaveAll(ctx context.Context, gs []models.Group) error

	// GetAll returns every group in the store, whatever its sync status.
	GetAll(ctx context.Context) ([]models.Group, error)

	// GetByID returns the group with the given local id.
	GetByID(ctx context.Context, id string) (models.Group, bool, error)

	// GetByStatus returns all groups currently in the given lifecycle state.
	GetByStatus(ctx context.Context, status models.SyncStatus) ([]models.Group, error)

	// GetByRemoteID returns the group carrying the given backend identifier.
	GetByRemoteID(ctx context.Context, remoteID string) (models.Group, bool, error)

	// Delete removes the group with the given local id. Deleting a missing
	// id is not an error.
	Delete(ctx context.Context, id string) error
}
