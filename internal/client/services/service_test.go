package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rosterkeeper/internal/client/models"
	"rosterkeeper/internal/client/netmon"
	"rosterkeeper/internal/client/repositories/groups"
	"rosterkeeper/internal/client/repositories/synclog"
	"rosterkeeper/internal/client/repositories/users"
	"rosterkeeper/internal/client/sensor"
	"rosterkeeper/internal/client/sync"
	"rosterkeeper/internal/logging"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE groups (
			id TEXT PRIMARY KEY,
			remote_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			sync_status TEXT NOT NULL,
			last_modified_at TEXT NOT NULL
		);
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			remote_id TEXT NOT NULL DEFAULT '',
			username TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			group_id TEXT NOT NULL DEFAULT '',
			sync_status TEXT NOT NULL,
			last_modified_at TEXT NOT NULL
		);
		CREATE TABLE sync_log (
			log_id TEXT PRIMARY KEY,
			entity TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL,
			final_status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			snapshot TEXT NOT NULL DEFAULT ''
		);
	`)
	require.NoError(t, err)
	return db
}

// noopGateway satisfies the engine contract without a backend. Create
// and Update echo the record back, which is enough for service tests
// that never exercise the network path.
type noopGateway[T any] struct{}

func (noopGateway[T]) Create(ctx context.Context, rec T) (T, error) { return rec, nil }
func (noopGateway[T]) Update(ctx context.Context, rec T) (T, error) { return rec, nil }
func (noopGateway[T]) Delete(ctx context.Context, remoteID string) error {
	return nil
}
func (noopGateway[T]) FetchAll(ctx context.Context) ([]T, error) { return nil, nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func okToken(ctx context.Context) (string, error) { return "token", nil }

func newGroupService(t *testing.T, db *sql.DB, monitor *netmon.Monitor) (*GroupService, *sensor.Sensor[models.Group]) {
	t.Helper()
	store := groups.NewSQLiteRepository(db)
	logStore := synclog.NewSQLiteRepository(db)
	bus := sensor.New[models.Group]()
	engine := sync.NewEngine[models.Group]("group", store, noopGateway[models.Group]{},
		logStore, okToken, bus, testLogger())
	return NewGroupService(store, engine, bus, monitor, testLogger()), bus
}

func newUserService(t *testing.T, db *sql.DB) *UserService {
	t.Helper()
	store := users.NewSQLiteRepository(db)
	groupStore := groups.NewSQLiteRepository(db)
	logStore := synclog.NewSQLiteRepository(db)
	bus := sensor.New[models.User]()
	engine := sync.NewEngine[models.User]("user", store, noopGateway[models.User]{},
		logStore, okToken, bus, testLogger())
	return NewUserService(store, groupStore, engine, bus, nil, testLogger())
}

func seedGroup(t *testing.T, db *sql.DB, g models.Group) {
	t.Helper()
	_, err := groups.NewSQLiteRepository(db).Save(context.Background(), g)
	require.NoError(t, err)
}

func TestGroupService_CreateIsOptimistic(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc, bus := newGroupService(t, db, nil)

	var synced int
	bus.On(sensor.ItemSynced, func(sensor.Payload[models.Group]) { synced++ })

	g, err := svc.Create(ctx, "Kitchen", "evening shift")
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, models.StatusPending, g.SyncStatus)
	assert.False(t, g.LastModifiedAt.IsZero())
	assert.Equal(t, 1, synced, "create reports synced optimistically")

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Kitchen", listed[0].Name)
}

func TestGroupService_UpdateGuard(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc, _ := newGroupService(t, db, nil)

	pending, err := svc.Create(ctx, "Kitchen", "")
	require.NoError(t, err)

	_, err = svc.Update(ctx, pending.ID, "Renamed", "")
	assert.ErrorIs(t, err, ErrNotEditable)

	seedGroup(t, db, models.Group{ID: "g1", RemoteID: "7", Name: "Floor",
		SyncStatus: models.StatusSynced, LastModifiedAt: time.Now().UTC().Add(-time.Hour)})

	updated, err := svc.Update(ctx, "g1", "Front", "front of house")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUpdated, updated.SyncStatus)
	assert.Equal(t, "Front", updated.Name)
	assert.True(t, updated.LastModifiedAt.After(time.Now().UTC().Add(-time.Minute)))

	// a queued edit can be edited again before the push lands
	again, err := svc.Update(ctx, "g1", "Front of House", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUpdated, again.SyncStatus)
	assert.Equal(t, "Front of House", again.Name)
}

func TestGroupService_DeleteGuard(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc, bus := newGroupService(t, db, nil)

	pending, err := svc.Create(ctx, "Kitchen", "")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(ctx, pending.ID), ErrNotDeletable)

	seedGroup(t, db, models.Group{ID: "g1", RemoteID: "7", Name: "Floor",
		SyncStatus: models.StatusBackend, LastModifiedAt: time.Now().UTC()})

	var deleted int
	bus.On(sensor.ItemDeleted, func(sensor.Payload[models.Group]) { deleted++ })

	require.NoError(t, svc.Delete(ctx, "g1"))
	assert.Equal(t, 1, deleted)

	// queued for deletion, hidden from listings, still in the store
	listed, err := svc.List(ctx)
	require.NoError(t, err)
	for _, g := range listed {
		assert.NotEqual(t, "g1", g.ID)
	}
	g, err := svc.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, g.SyncStatus)
}

func TestGroupService_DeleteUnknown(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGroupService(t, newTestDB(t), nil)
	assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
}

type upProber struct{}

func (upProber) Ping(ctx context.Context) error { return nil }

func TestGroupService_ListVisibility(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	now := time.Now().UTC()
	seedGroup(t, db, models.Group{ID: "g1", Name: "ok", SyncStatus: models.StatusBackend, LastModifiedAt: now})
	seedGroup(t, db, models.Group{ID: "g2", Name: "queued", SyncStatus: models.StatusPending, LastModifiedAt: now})
	seedGroup(t, db, models.Group{ID: "g3", Name: "broken", SyncStatus: models.StatusFailed, LastModifiedAt: now})
	seedGroup(t, db, models.Group{ID: "g4", Name: "gone", SyncStatus: models.StatusDeleted, LastModifiedAt: now})

	t.Run("offline hides only deleted", func(t *testing.T) {
		svc, _ := newGroupService(t, db, nil)
		listed, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, listed, 3)
	})

	t.Run("online also hides failed", func(t *testing.T) {
		monitor := netmon.NewMonitor(upProber{}, "http://127.0.0.1:5000", time.Second, testLogger())
		monitor.Check(ctx)
		svc, _ := newGroupService(t, db, monitor)

		listed, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		for _, g := range listed {
			assert.NotEqual(t, models.StatusFailed, g.SyncStatus)
		}
	})
}

func TestUserService_CreateResolvesGroup(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newUserService(t, db)

	now := time.Now().UTC()
	seedGroup(t, db, models.Group{ID: "g1", RemoteID: "42", Name: "Kitchen",
		SyncStatus: models.StatusSynced, LastModifiedAt: now})
	seedGroup(t, db, models.Group{ID: "g2", Name: "Unsynced",
		SyncStatus: models.StatusPending, LastModifiedAt: now})

	u, err := svc.Create(ctx, "bob", "Bob", "g1")
	require.NoError(t, err)
	assert.Equal(t, "42", u.GroupID, "membership carries the backend group id")

	_, err = svc.Create(ctx, "carol", "Carol", "g2")
	assert.ErrorIs(t, err, ErrGroupNotSynced)

	_, err = svc.Create(ctx, "dave", "Dave", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	loner, err := svc.Create(ctx, "eve", "Eve", "")
	require.NoError(t, err)
	assert.Empty(t, loner.GroupID)
}

func TestUserService_ListByGroup(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newUserService(t, db)

	seedGroup(t, db, models.Group{ID: "g1", RemoteID: "42", Name: "Kitchen",
		SyncStatus: models.StatusSynced, LastModifiedAt: time.Now().UTC()})

	_, err := svc.Create(ctx, "bob", "Bob", "g1")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "eve", "Eve", "")
	require.NoError(t, err)

	members, err := svc.ListByGroup(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "bob", members[0].Username)
}

func TestUserService_RetryDelegates(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newUserService(t, db)

	store := users.NewSQLiteRepository(db)
	_, err := store.Save(ctx, models.User{ID: "u1", RemoteID: "5", Username: "bob",
		SyncStatus: models.StatusFailed, LastModifiedAt: time.Now().UTC()})
	require.NoError(t, err)

	require.NoError(t, svc.Retry(ctx, "u1"))

	u, ok, err := store.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.StatusSynced, u.SyncStatus, "retried update landed through the engine")
}
