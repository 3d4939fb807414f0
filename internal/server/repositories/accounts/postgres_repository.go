package accounts

import (
	"context"
	"database/sql"
	"errors"

	"rosterkeeper/internal/common"
	"rosterkeeper/internal/dbx"
	"rosterkeeper/internal/server/models"
	"rosterkeeper/internal/server/repositories/pgerr"
)

// PostgresRepository implements Repository over a DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, username, passwordHash string) (models.Account, error) {
	query := `INSERT INTO accounts (username, password_hash)
			VALUES ($1, $2)
			RETURNING id, created_at`

	a := models.Account{Username: username, PasswordHash: passwordHash}
	err := r.db.QueryRowContext(ctx, query, username, passwordHash).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return models.Account{}, pgerr.Map(err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (models.Account, error) {
	query := `SELECT id, username, password_hash, created_at FROM accounts
			WHERE username = $1`

	var a models.Account
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, common.ErrNotFound
	}
	if err != nil {
		return models.Account{}, pgerr.Map(err)
	}
	return a, nil
}
