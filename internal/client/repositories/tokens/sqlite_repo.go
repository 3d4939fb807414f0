package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

// Put stores or replaces a token by key.
func (r *SQLiteRepository) Put(ctx context.Context, t Token) error {
	expires := ""
	if !t.ExpiresAt.IsZero() {
		expires = t.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}

	query := `INSERT INTO tokens (key, token, expires_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET token = excluded.token,
				expires_at = excluded.expires_at`
	if _, err := r.db.ExecContext(ctx, query, t.Key, t.Value, expires); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Get returns the token stored under key.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (Token, bool, error) {
	var t Token
	var expires string
	err := r.db.QueryRowContext(ctx,
		`SELECT key, token, expires_at FROM tokens WHERE key = ?`, key).
		Scan(&t.Key, &t.Value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, fmt.Errorf("failed to select token: %w", err)
	}

	if expires != "" {
		ts, err := time.Parse(time.RFC3339Nano, expires)
		if err != nil {
			return Token{}, false, fmt.Errorf("failed to parse expires_at: %w", err)
		}
		t.ExpiresAt = ts
	}
	return t, true, nil
}

// Delete removes the token stored under key.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
