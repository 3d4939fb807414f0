package groups

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

const groupColumns = `id, remote_id, name, description, sync_status, last_modified_at`

// Save upserts a group by id after validating it.
func (r *SQLiteRepository) Save(ctx context.Context, g models.Group) (models.Group, error) {
	if err := g.Validate(); err != nil {
		return models.Group{}, err
	}

	query := `INSERT INTO groups (` + groupColumns + `)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET remote_id = excluded.remote_id,
				name = excluded.name,
				description = excluded.description,
				sync_status = excluded.sync_status,
				last_modified_at = excluded.last_modified_at
	`
	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.RemoteID, g.Name, g.Description, string(g.SyncStatus),
		g.LastModifiedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return models.Group{}, fmt.Errorf("failed to upsert group: %w", err)
	}
	return g, nil
}

// SaveAll upserts every group in order.
func (r *SQLiteRepository) SaveAll(ctx context.Context, gs []models.Group) error {
	for _, g := range gs {
		if _, err := r.Save(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// GetAll lists every group in the store.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select groups: %w", err)
	}
	defer rows.Close()
	return collectGroups(rows)
}

// GetByID returns the group with the given local id.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (models.Group, bool, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = ?`
	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, false, nil
	}
	if err != nil {
		return models.Group{}, false, err
	}
	return g, true, nil
}

// GetByStatus lists groups via the sync_status index.
func (r *SQLiteRepository) GetByStatus(ctx context.Context, status models.SyncStatus) ([]models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE sync_status = ?`
	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to select groups by status: %w", err)
	}
	defer rows.Close()
	return collectGroups(rows)
}

// GetByRemoteID returns the group carrying the given backend identifier.
func (r *SQLiteRepository) GetByRemoteID(ctx context.Context, remoteID string) (models.Group, bool, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE remote_id = ?`
	g, err := scanGroup(r.db.QueryRowContext(ctx, query, remoteID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, false, nil
	}
	if err != nil {
		return models.Group{}, false, err
	}
	return g, true, nil
}

// Delete removes a group by local id.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (models.Group, error) {
	var g models.Group
	var status, modified string
	if err := row.Scan(&g.ID, &g.RemoteID, &g.Name, &g.Description, &status, &modified); err != nil {
		return models.Group{}, err
	}
	g.SyncStatus = models.SyncStatus(status)

	ts, err := time.Parse(time.RFC3339Nano, modified)
	if err != nil {
		return models.Group{}, fmt.Errorf("failed to parse last_modified_at: %w", err)
	}
	g.LastModifiedAt = ts
	return g, nil
}

func collectGroups(rows *sql.Rows) ([]models.Group, error) {
	var result []models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
