// Package sync implements the client-side synchronization engine. One
// Engine runs per entity kind and reconciles the local store with the
// backend collection: push sends queued local changes up, pull brings
// the authoritative remote state down.
package sync

import (
	"context"
	"errors"
	"time"

	"rosterkeeper/internal/client/models"
	"rosterkeeper/internal/client/repositories/synclog"
)

// ErrNoCredentials aborts a whole push batch before any record is
// touched, distinguishing "cannot attempt" from "attempted and failed".
var ErrNoCredentials = errors.New("no credentials available")

// Record is the contract an entity must satisfy to be synchronized.
// The With methods return modified copies so the engine never mutates
// a caller's value in place.
type Record[T any] interface {
	Key() string
	RemoteKey() string
	Status() models.SyncStatus
	ModifiedAt() time.Time
	WithID(id string) T
	WithRemoteID(id string) T
	WithStatus(s models.SyncStatus) T
}

// Store is the slice of the local repository the engine needs. The
// SQLite repositories satisfy it directly.
type Store[T any] interface {
	Save(ctx context.Context, rec T) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (T, bool, error)
	GetByStatus(ctx context.Context, status models.SyncStatus) ([]T, error)
	GetByRemoteID(ctx context.Context, remoteID string) (T, bool, error)
	Delete(ctx context.Context, id string) error
}

// Gateway is the backend collection for one entity kind.
type Gateway[T any] interface {
	// Create posts a new record and returns it carrying the backend id.
	Create(ctx context.Context, rec T) (T, error)
	// Update overwrites the backend record addressed by the remote id.
	Update(ctx context.Context, rec T) (T, error)
	// Delete removes the backend record addressed by the remote id.
	Delete(ctx context.Context, remoteID string) error
	// FetchAll lists the full backend collection.
	FetchAll(ctx context.Context) ([]T, error)
}

// LogStore receives one audit entry per processed record.
type LogStore interface {
	Append(ctx context.Context, e synclog.Entry) error
	LastForEntity(ctx context.Context, entityID string) (synclog.Entry, bool, error)
}

// TokenFunc resolves the credential gating a push batch. An empty token
// or an error means the batch must not start.
type TokenFunc func(ctx context.Context) (string, error)
