// Package models defines the client-side roster records kept in the local
// store and the sync-status lifecycle they move through.
package models

import (
	"errors"
	"fmt"
)

// SyncStatus describes where a record stands in the client/backend
// synchronization lifecycle.
type SyncStatus string

const (
	// StatusPending marks a record created locally and never sent to the backend.
	StatusPending SyncStatus = "pending"
	// StatusInProgress marks a record currently being sent during an active sync attempt.
	StatusInProgress SyncStatus = "in-progress"
	// StatusSynced marks a locally-originated record confirmed by the backend.
	StatusSynced SyncStatus = "synced"
	// StatusUpdated marks a confirmed record edited locally, awaiting re-sync.
	StatusUpdated SyncStatus = "updated"
	// StatusDeleted marks a confirmed record queued for backend deletion.
	StatusDeleted SyncStatus = "deleted"
	// StatusFailed marks a record whose last sync attempt did not succeed.
	StatusFailed SyncStatus = "failed"
	// StatusBackend marks a record whose authoritative copy came from a pull.
	StatusBackend SyncStatus = "backend"
)

// ErrInvalidTransition is returned for any lifecycle edge not in the
// transition table. Hitting it indicates a programming error, not a
// recoverable runtime condition.
var ErrInvalidTransition = errors.New("invalid sync status transition")

var transitions = map[SyncStatus][]SyncStatus{
	StatusPending:    {StatusInProgress, StatusFailed},
	StatusInProgress: {StatusSynced, StatusFailed},
	StatusSynced:     {StatusUpdated, StatusDeleted},
	StatusBackend:    {StatusUpdated, StatusDeleted},
	StatusUpdated:    {StatusInProgress, StatusFailed},
	StatusDeleted:    {StatusInProgress, StatusFailed},
	StatusFailed:     {StatusPending, StatusUpdated, StatusDeleted, StatusInProgress},
}

// Valid reports whether s is one of the known lifecycle states.
func (s SyncStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Confirmed reports whether the backend holds an authoritative copy of the
// record: true for both synced (locally originated) and backend (pulled).
func (s SyncStatus) Confirmed() bool {
	return s == StatusSynced || s == StatusBackend
}

// TransitionTo validates the edge s -> next against the lifecycle table.
// The returned error carries the attempted pair.
func (s SyncStatus) TransitionTo(next SyncStatus) error {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, s, next)
}
