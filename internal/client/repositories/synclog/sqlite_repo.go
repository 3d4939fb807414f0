package synclog

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

const logColumns = `log_id, entity, entity_id, action, final_status, created_at, snapshot`

// Append inserts a new log entry.
func (r *SQLiteRepository) Append(ctx context.Context, e Entry) error {
	query := `INSERT INTO sync_log (` + logColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.LogID, e.Entity, e.EntityID, string(e.Action), string(e.FinalStatus),
		e.CreatedAt.UTC().Format(time.RFC3339Nano), string(e.Snapshot))
	if err != nil {
		return fmt.Errorf("failed to append sync log entry: %w", err)
	}
	return nil
}

// LastForEntity returns the newest entry recorded for an entity id.
func (r *SQLiteRepository) LastForEntity(ctx context.Context, entityID string) (Entry, bool, error) {
	query := `SELECT ` + logColumns + ` FROM sync_log WHERE entity_id = ?
			ORDER BY created_at DESC, log_id DESC LIMIT 1`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, entityID))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// All lists every entry, newest first.
func (r *SQLiteRepository) All(ctx context.Context) ([]Entry, error) {
	query := `SELECT ` + logColumns + ` FROM sync_log ORDER BY created_at DESC, log_id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select sync log: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var action, status, created, snapshot string
	if err := row.Scan(&e.LogID, &e.Entity, &e.EntityID, &action, &status, &created, &snapshot); err != nil {
		return Entry{}, err
	}
	e.Action = Action(action)
	e.FinalStatus = models.SyncStatus(status)
	e.Snapshot = []byte(snapshot)

	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	e.CreatedAt = ts
	return e, nil
}
