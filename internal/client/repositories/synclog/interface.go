// Package synclog stores the append-only audit trail of sync attempts.
package synclog

import (
	"context"
	"encoding/json"
	"time"

	"rosterkeeper/internal/client/models"
)

// Action names the backend operation a sync attempt carried out.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry is one immutable audit record, written once per terminal sync
// attempt outcome and never mutated afterwards. It exists for audit and
// debugging; reconciliation never reads it back.
type Entry struct {
	LogID       string
	Entity      string
	EntityID    string
	Action      Action
	FinalStatus models.SyncStatus
	CreatedAt   time.Time
	Snapshot    json.RawMessage
}

// Repository describes the append-only log store.
type Repository interface {
	// Append persists a new entry. Entries are never updated or deleted.
	Append(ctx context.Context, e Entry) error

	// LastForEntity returns the most recent entry for the given entity id.
	// Used by explicit retry to re-derive the last intended action.
	LastForEntity(ctx context.Context, entityID string) (Entry, bool, error)

	// All lists every entry, newest first.
	All(ctx context.Context) ([]Entry, error)
}
