package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"rosterkeeper/internal/server/migrations"
	"rosterkeeper/internal/server/repositories/accounts"
	"rosterkeeper/internal/server/repositories/groups"
	"rosterkeeper/internal/server/repositories/users"
)

// PostgresManager implements Manager over a pgx stdlib pool.
type PostgresManager struct {
	db *sql.DB
}

// NewPostgresManager opens the database, verifies connectivity and
// applies pending migrations.
func NewPostgresManager(ctx context.Context, dsn string) (*PostgresManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	m := &PostgresManager{db: db}
	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return m, nil
}

func (m *PostgresManager) Accounts() accounts.Repository {
	return accounts.NewPostgresRepository(m.db)
}

func (m *PostgresManager) Groups() groups.Repository {
	return groups.NewPostgresRepository(m.db)
}

func (m *PostgresManager) Users() users.Repository {
	return users.NewPostgresRepository(m.db)
}

// RunMigrations applies the embedded migrations to db.
func (m *PostgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func (m *PostgresManager) Close() error {
	return m.db.Close()
}
