package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingID marks a record that lost its local identifier; such records
// must never reach the store.
var ErrMissingID = errors.New("record has no local id")

// Group is a roster group as persisted in the local store.
//
// ID is generated locally at creation time and never reassigned. RemoteID is
// empty until the backend confirms the first create; a non-empty RemoteID
// means the record has existed on the backend at some point.
type Group struct {
	ID             string
	RemoteID       string
	Name           string
	Description    string
	SyncStatus     SyncStatus
	LastModifiedAt time.Time
}

// Key returns the local store primary key.
func (g Group) Key() string { return g.ID }

// RemoteKey returns the backend-assigned identifier, empty if never created remotely.
func (g Group) RemoteKey() string { return g.RemoteID }

func (g Group) Status() SyncStatus    { return g.SyncStatus }
func (g Group) ModifiedAt() time.Time { return g.LastModifiedAt }

// WithID returns a copy bound to the given local id.
func (g Group) WithID(id string) Group {
	g.ID = id
	return g
}

// WithRemoteID returns a copy carrying the backend-assigned identifier.
func (g Group) WithRemoteID(id string) Group {
	g.RemoteID = id
	return g
}

// WithStatus returns a copy in the given lifecycle state.
func (g Group) WithStatus(s SyncStatus) Group {
	g.SyncStatus = s
	return g
}

// Touched returns a copy stamped with the current UTC time. The stamp never
// moves backwards, keeping LastModifiedAt monotonic per record.
func (g Group) Touched() Group {
	if now := time.Now().UTC(); now.After(g.LastModifiedAt) {
		g.LastModifiedAt = now
	}
	return g
}

// Validate rejects records that must not be persisted: a missing local id or
// an unknown sync status. This is the save-time boundary that keeps
// malformed records out of the store.
func (g Group) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("group %q: %w", g.Name, ErrMissingID)
	}
	if !g.SyncStatus.Valid() {
		return fmt.Errorf("group %s: unknown sync status %q", g.ID, g.SyncStatus)
	}
	return nil
}
