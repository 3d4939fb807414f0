package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"rosterkeeper/internal/client/models"
	"rosterkeeper/internal/client/netmon"
	"rosterkeeper/internal/client/repositories/groups"
	"rosterkeeper/internal/client/repositories/users"
	"rosterkeeper/internal/client/sensor"
	"rosterkeeper/internal/client/sync"
	"rosterkeeper/internal/logging"
)

// ErrGroupNotSynced rejects attaching a user to a group the backend has
// not confirmed yet; the membership field carries the backend group id.
var ErrGroupNotSynced = errors.New("group is not synced yet, sync it before assigning users")

// UserService owns the user collection lifecycle on the client.
type UserService struct {
	store    users.Repository
	groupSrc groups.Repository
	engine   *sync.Engine[models.User]
	bus      *sensor.Sensor[models.User]
	monitor  *netmon.Monitor
	logger   logging.Logger
	newID    func() string
}

// NewUserService wires a UserService. groupSrc resolves group
// membership at create time.
func NewUserService(store users.Repository, groupSrc groups.Repository,
	engine *sync.Engine[models.User], bus *sensor.Sensor[models.User],
	monitor *netmon.Monitor, logger logging.Logger) *UserService {
	return &UserService{
		store:    store,
		groupSrc: groupSrc,
		engine:   engine,
		bus:      bus,
		monitor:  monitor,
		logger:   logger.With("entity", "user"),
		newID:    uuid.NewString,
	}
}

// Create stores a new user as pending. groupID is the local id of an
// already synced group, or empty for no membership.
func (s *UserService) Create(ctx context.Context, username, name, groupID string) (models.User, error) {
	remoteGroupID, err := s.resolveGroup(ctx, groupID)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{
		ID:         s.newID(),
		Username:   username,
		Name:       name,
		GroupID:    remoteGroupID,
		SyncStatus: models.StatusPending,
	}.Touched()

	u, err = s.store.Save(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	s.bus.ItemSynced(u)
	s.kickSync(ctx)
	return u, nil
}

// Update edits a confirmed user and queues the change for push.
func (s *UserService) Update(ctx context.Context, id, username, name, groupID string) (models.User, error) {
	u, ok, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if !u.SyncStatus.Confirmed() && u.SyncStatus != models.StatusUpdated {
		return models.User{}, fmt.Errorf("user %s (%s): %w", id, u.SyncStatus, ErrNotEditable)
	}

	remoteGroupID, err := s.resolveGroup(ctx, groupID)
	if err != nil {
		return models.User{}, err
	}

	u.Username = username
	u.Name = name
	u.GroupID = remoteGroupID
	u = u.WithStatus(models.StatusUpdated).Touched()
	u, err = s.store.Save(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	s.kickSync(ctx)
	return u, nil
}

// Delete queues a confirmed user for backend deletion.
func (s *UserService) Delete(ctx context.Context, id string) error {
	u, ok, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if !u.SyncStatus.Confirmed() {
		return fmt.Errorf("user %s (%s): %w", id, u.SyncStatus, ErrNotDeletable)
	}

	u = u.WithStatus(models.StatusDeleted).Touched()
	if _, err := s.store.Save(ctx, u); err != nil {
		return err
	}
	s.bus.ItemDeleted(u)
	s.kickSync(ctx)
	return nil
}

// List returns the users a user interface should show, with the same
// visibility rule as groups.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	online := s.monitor != nil && s.monitor.Online()

	result := make([]models.User, 0, len(all))
	for _, u := range all {
		if !visible(u.SyncStatus, online) {
			continue
		}
		result = append(result, u)
	}
	return result, nil
}

// ListByGroup returns visible users belonging to the group with the
// given local id, resolved through its backend id.
func (s *UserService) ListByGroup(ctx context.Context, groupID string) ([]models.User, error) {
	remoteGroupID, err := s.resolveGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	all, err := s.store.GetByGroupID(ctx, remoteGroupID)
	if err != nil {
		return nil, err
	}
	online := s.monitor != nil && s.monitor.Online()

	result := make([]models.User, 0, len(all))
	for _, u := range all {
		if !visible(u.SyncStatus, online) {
			continue
		}
		result = append(result, u)
	}
	return result, nil
}

// Retry re-queues a failed user through the engine.
func (s *UserService) Retry(ctx context.Context, id string) error {
	return s.engine.Retry(ctx, id)
}

// Sync runs one full pull-then-push cycle.
func (s *UserService) Sync(ctx context.Context) error {
	return s.engine.Cycle(ctx)
}

// resolveGroup maps a local group id to the backend group id carried on
// user records. Empty in means no membership.
func (s *UserService) resolveGroup(ctx context.Context, groupID string) (string, error) {
	if groupID == "" {
		return "", nil
	}
	g, ok, err := s.groupSrc.GetByID(ctx, groupID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	if g.RemoteID == "" {
		return "", fmt.Errorf("group %s: %w", groupID, ErrGroupNotSynced)
	}
	return g.RemoteID, nil
}

func (s *UserService) kickSync(ctx context.Context) {
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
