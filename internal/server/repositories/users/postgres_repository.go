package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// group_id is nullable; it travels as an empty string in Go.
const userColumns = `id, username, name, COALESCE(group_id::text, ''), created_at, last_modified_at`

func (r *PostgresRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	query := `INSERT INTO users (username, name, group_id)
			VALUES ($1, $2, NULLIF($3, '')::uuid)
			RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query, u.Username, u.Name, u.GroupID))
	if err != nil {
		return models.User{}, pgerr.Map(err)
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u models.User) (models.User, error) {
	query := `UPDATE users
			SET username = $2, name = $3, group_id = NULLIF($4, '')::uuid,
				last_modified_at = now()
			WHERE id = $1
			RETURNING ` + userColumns

	updated, err := scanUser(r.db.QueryRowContext(ctx, query, u.ID, u.Username, u.Name, u.GroupID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, common.ErrNotFound
	}
	if err != nil {
		return models.User{}, pgerr.Map(err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return pgerr.Map(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, common.ErrNotFound
	}
	if err != nil {
		return models.User{}, pgerr.Map(err)
	}
	return u, nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, pgerr.Map(err)
	}
	defer rows.Close()

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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.GroupID, &u.CreatedAt, &u.LastModifiedAt)
	return u, err
}
