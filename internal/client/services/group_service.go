// Package services is the boundary the UI talks to: optimistic local
// writes, edit and delete guards, and sync kicks when the backend is
// within reach. Nothing here performs network calls directly, queued
// changes always travel through the engine.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"rosterkeeper/internal/client/models"
	"rosterkeeper/internal/client/netmon"
	"rosterkeeper/internal/client/repositories/groups"
	"rosterkeeper/internal/client/sensor"
	"rosterkeeper/internal/client/sync"
	"rosterkeeper/internal/logging"
)

var (
	// ErrNotEditable rejects edits on records the backend has not
	// confirmed yet; their queued create or retry must land first.
	ErrNotEditable = errors.New("record is not confirmed yet and cannot be edited")
	// ErrNotDeletable rejects deletions of unconfirmed records.
	ErrNotDeletable = errors.New("record is not confirmed yet and cannot be deleted")
	// ErrNotFound marks a lookup by unknown local id.
	ErrNotFound = errors.New("record not found")
)

// GroupService owns the group collection lifecycle on the client.
type GroupService struct {
	store   groups.Repository
	engine  *sync.Engine[models.Group]
	bus     *sensor.Sensor[models.Group]
	monitor *netmon.Monitor
	logger  logging.Logger
	newID   func() string
}

// NewGroupService wires a GroupService. monitor may be nil in tests,
// which disables background sync kicks.
func NewGroupService(store groups.Repository, engine *sync.Engine[models.Group],
	bus *sensor.Sensor[models.Group], monitor *netmon.Monitor, logger logging.Logger) *GroupService {
	return &GroupService{
		store:   store,
		engine:  engine,
		bus:     bus,
		monitor: monitor,
		logger:  logger.With("entity", "group"),
		newID:   uuid.NewString,
	}
}

// Create stores a new group as pending and reports it synced
// optimistically; the engine confirms or fails it later.
func (s *GroupService) Create(ctx context.Context, name, description string) (models.Group, error) {
	g := models.Group{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		SyncStatus:  models.StatusPending,
	}.Touched()

	g, err := s.store.Save(ctx, g)
	if err != nil {
		return models.Group{}, err
	}
	s.bus.ItemSynced(g)
	s.kickSync(ctx)
	return g, nil
}

// Update edits a confirmed group and queues the change for push.
func (s *GroupService) Update(ctx context.Context, id, name, description string) (models.Group, error) {
	g, ok, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.Group{}, err
	}
	if !ok {
		return models.Group{}, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	if !g.SyncStatus.Confirmed() && g.SyncStatus != models.StatusUpdated {
		return models.Group{}, fmt.Errorf("group %s (%s): %w", id, g.SyncStatus, ErrNotEditable)
	}

	g.Name = name
	g.Description = description
	g = g.WithStatus(models.StatusUpdated).Touched()
	g, err = s.store.Save(ctx, g)
	if err != nil {
		return models.Group{}, err
	}
	s.kickSync(ctx)
	return g, nil
}

// Delete queues a confirmed group for backend deletion. The record
// disappears from listings immediately and from the store once the
// engine confirms.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	g, ok, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	if !g.SyncStatus.Confirmed() {
		return fmt.Errorf("group %s (%s): %w", id, g.SyncStatus, ErrNotDeletable)
	}

	g = g.WithStatus(models.StatusDeleted).Touched()
	if _, err := s.store.Save(ctx, g); err != nil {
		return err
	}
	s.bus.ItemDeleted(g)
	s.kickSync(ctx)
	return nil
}

// List returns the groups a user should see. Online, records stuck in
// failed or in-progress are hidden as terminal noise; offline they stay
// visible since no engine can resolve them. Deleted records are always
// hidden.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	online := s.monitor != nil && s.monitor.Online()

	result := make([]models.Group, 0, len(all))
	for _, g := range all {
		if !visible(g.SyncStatus, online) {
			continue
		}
		result = append(result, g)
	}
	return result, nil
}

// Get returns one group by local id, regardless of visibility.
func (s *GroupService) Get(ctx context.Context, id string) (models.Group, error) {
	g, ok, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.Group{}, err
	}
	if !ok {
		return models.Group{}, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	return g, nil
}

// Retry re-queues a failed group through the engine.
func (s *GroupService) Retry(ctx context.Context, id string) error {
	return s.engine.Retry(ctx, id)
}

// Sync runs one full pull-then-push cycle.
func (s *GroupService) Sync(ctx context.Context) error {
	return s.engine.Cycle(ctx)
}

// kickSync runs a background push when the backend is within reach.
// Offline, the change simply stays queued.
func (s *GroupService) kickSync(ctx context.Context) {
	if s.monitor == nil || !s.monitor.Online() {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := s.engine.Push(bg); err != nil {
			s.logger.Warn(bg, "background push failed", "error", err)
		}
	}()
}

func visible(status models.SyncStatus, online bool) bool {
	if status == models.StatusDeleted {
		return false
	}
	if online && (status == models.StatusFailed || status == models.StatusInProgress) {
		return false
	}
	return true
}
