package users

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rosterkeeper/internal/client/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			remote_id TEXT NOT NULL DEFAULT '',
			username TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			group_id TEXT NOT NULL DEFAULT '',
			sync_status TEXT NOT NULL,
			last_modified_at TEXT NOT NULL
		);
		CREATE INDEX idx_users_sync_status ON users (sync_status);
		CREATE INDEX idx_users_remote_id ON users (remote_id);
		CREATE INDEX idx_users_group_id ON users (group_id);
	`)
	require.NoError(t, err)
	return db
}

func testUser(id string) models.User {
	return models.User{
		ID:             id,
		Username:       "user-" + id,
		Name:           "User " + id,
		SyncStatus:     models.StatusPending,
		LastModifiedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(newTestDB(t))

	u := testUser("u1")
	u.GroupID = "42"

	_, err := repo.Save(ctx, u)
	require.NoError(t, err)

	got, ok, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "user-u1", got.Username)
	assert.Equal(t, "42", got.GroupID)
	assert.True(t, got.LastModifiedAt.Equal(u.LastModifiedAt))
}

func TestSQLiteRepository_SaveUpsertsByID(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(newTestDB(t))

	u := testUser("u1")
	_, err := repo.Save(ctx, u)
	require.NoError(t, err)

	u.Name = "Renamed"
	u.RemoteID = "9"
	u.SyncStatus = models.StatusSynced
	_, err = repo.Save(ctx, u)
	require.NoError(t, err)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Renamed", all[0].Name)
	assert.Equal(t, "9", all[0].RemoteID)
	assert.Equal(t, models.StatusSynced, all[0].SyncStatus)
}

func TestSQLiteRepository_GetByGroupID(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(newTestDB(t))

	u1 := testUser("u1")
	u1.GroupID = "7"
	u2 := testUser("u2")
	u2.GroupID = "7"
	u3 := testUser("u3")
	u3.GroupID = "8"
	require.NoError(t, repo.SaveAll(ctx, []models.User{u1, u2, u3}))

	members, err := repo.GetByGroupID(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestSQLiteRepository_GetByStatusAndRemoteID(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(newTestDB(t))

	u1 := testUser("u1")
	u2 := testUser("u2")
	u2.SyncStatus = models.StatusDeleted
	u2.RemoteID = "5"
	require.NoError(t, repo.SaveAll(ctx, []models.User{u1, u2}))

	deleted, err := repo.GetByStatus(ctx, models.StatusDeleted)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "u2", deleted[0].ID)

	got, ok, err := repo.GetByRemoteID(ctx, "5")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u2", got.ID)
}

func TestSQLiteRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(newTestDB(t))

	_, err := repo.Save(ctx, testUser("u1"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "u1"))

	_, ok, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}
