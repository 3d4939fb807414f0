// Package repomanager opens the server database and hands out
// repositories bound to it.
package repomanager

import (
	"context"
	"database/sql"

	"rosterkeeper/internal/server/repositories/accounts"
	"rosterkeeper/internal/server/repositories/groups"
	"rosterkeeper/internal/server/repositories/users"
)

// Manager provides repositories over one shared database handle.
type Manager interface {
	Accounts() accounts.Repository
	Groups() groups.Repository
	Users() users.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
	Close() error
}
