package models

import (
	"fmt"
	"time"
)

// User is a roster member as persisted in the local store. GroupID carries
// the backend identifier of the group the user belongs to and is indexed for
// by-group lookups.
type User struct {
	ID             string
	RemoteID       string
	Username       string
	Name           string
	GroupID        string
	SyncStatus     SyncStatus
	LastModifiedAt time.Time
}

// Key returns the local store primary key.
func (u User) Key() string { return u.ID }

// RemoteKey returns the backend-assigned identifier, empty if never created remotely.
func (u User) RemoteKey() string { return u.RemoteID }

func (u User) Status() SyncStatus    { return u.SyncStatus }
func (u User) ModifiedAt() time.Time { return u.LastModifiedAt }

// WithID returns a copy bound to the given local id.
func (u User) WithID(id string) User {
	u.ID = id
	return u
}

// WithRemoteID returns a copy carrying the backend-assigned identifier.
func (u User) WithRemoteID(id string) User {
	u.RemoteID = id
	return u
}

// WithStatus returns a copy in the given lifecycle state.
func (u User) WithStatus(s SyncStatus) User {
	u.SyncStatus = s
	return u
}

// Touched returns a copy stamped with the current UTC time, never moving the
// stamp backwards.
func (u User) Touched() User {
	if now := time.Now().UTC(); now.After(u.LastModifiedAt) {
		u.LastModifiedAt = now
	}
	return u
}

// Validate rejects records missing a local id or carrying an unknown status.
func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user %q: %w", u.Username, ErrMissingID)
	}
	if !u.SyncStatus.Valid() {
		return fmt.Errorf("user %s: unknown sync status %q", u.ID, u.SyncStatus)
	}
	return nil
}
