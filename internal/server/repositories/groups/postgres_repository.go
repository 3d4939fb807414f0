package groups

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

const groupColumns = `id, name, description, created_at, last_modified_at`

func (r *PostgresRepository) Create(ctx context.Context, g models.Group) (models.Group, error) {
	query := `INSERT INTO groups (name, description)
			VALUES ($1, $2)
			RETURNING ` + groupColumns

	created, err := scanGroup(r.db.QueryRowContext(ctx, query, g.Name, g.Description))
	if err != nil {
		return models.Group{}, pgerr.Map(err)
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, g models.Group) (models.Group, error) {
	query := `UPDATE groups
			SET name = $2, description = $3, last_modified_at = now()
			WHERE id = $1
			RETURNING ` + groupColumns

	updated, err := scanGroup(r.db.QueryRowContext(ctx, query, g.ID, g.Name, g.Description))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, common.ErrNotFound
	}
	if err != nil {
		return models.Group{}, pgerr.Map(err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
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

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`

	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, common.ErrNotFound
	}
	if err != nil {
		return models.Group{}, pgerr.Map(err)
	}
	return g, nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, pgerr.Map(err)
	}
	defer rows.Close()

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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (models.Group, error) {
	var g models.Group
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt, &g.LastModifiedAt)
	return g, err
}
