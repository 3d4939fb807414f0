package users

import (
	"context"

	"rosterkeeper/internal/client/models"
)

// Repository describes persistence and query operations for User records.
// Same contract as the groups repository, plus a by-group lookup over the
// group_id index.
type Repository interface {
	Save(ctx context.Context, u models.User) (models.User, error)
	SaveAll(ctx context.Context, us []models.User) error
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (models.User, bool, error)
	GetByStatus(ctx context.Context, status models.SyncStatus) ([]models.User, error)
	GetByRemoteID(ctx context.Context, remoteID string) (models.User, bool, error)

	// GetByGroupID returns users that reference the given backend group id.
	GetByGroupID(ctx context.Context, groupID string) ([]models.User, error)

	Delete(ctx context.Context, id string) error
}
