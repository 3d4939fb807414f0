package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rosterkeeper/internal/client/models"
	"rosterkeeper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const userColumns = `id, remote_id, username, name, group_id, sync_status, last_modified_at`

// Save upserts a user by id after validating it.
func (r *SQLiteRepository) Save(ctx context.Context, u models.User) (models.User, error) {
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}

	query := `INSERT INTO users (` + userColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET remote_id = excluded.remote_id,
				username = excluded.username,
				name = excluded.name,
				group_id = excluded.group_id,
				sync_status = excluded.sync_status,
				last_modified_at = excluded.last_modified_at
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.RemoteID, u.Username, u.Name, u.GroupID, string(u.SyncStatus),
		u.LastModifiedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return models.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return u, nil
}

// SaveAll upserts every user in order.
func (r *SQLiteRepository) SaveAll(ctx context.Context, us []models.User) error {
	for _, u := range us {
		if _, err := r.Save(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// GetAll lists every user in the store.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// GetByID returns the user with the given local id.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (models.User, bool, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return u, true, nil
}

// GetByStatus lists users via the sync_status index.
func (r *SQLiteRepository) GetByStatus(ctx context.Context, status models.SyncStatus) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE sync_status = ?`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to select users by status: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// GetByRemoteID returns the user carrying the given backend identifier.
func (r *SQLiteRepository) GetByRemoteID(ctx context.Context, remoteID string) (models.User, bool, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE remote_id = ?`, remoteID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return u, true, nil
}

// GetByGroupID lists users belonging to a group via the group_id index.
func (r *SQLiteRepository) GetByGroupID(ctx context.Context, groupID string) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE group_id = ?`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to select users by group: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// Delete removes a user by local id.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var status, modified string
	if err := row.Scan(&u.ID, &u.RemoteID, &u.Username, &u.Name, &u.GroupID, &status, &modified); err != nil {
		return models.User{}, err
	}
	u.SyncStatus = models.SyncStatus(status)

	ts, err := time.Parse(time.RFC3339Nano, modified)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to parse last_modified_at: %w", err)
	}
	u.LastModifiedAt = ts
	return u, nil
}

func collectUsers(rows *sql.Rows) ([]models.User, error) {
	var result []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
