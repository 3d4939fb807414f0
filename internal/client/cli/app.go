// Package cli implements the rosterkeeper command-line client.
package cli

import (
	"context"
	"database/sql"
	"time"

	"rosterkeeper/internal/client/config"
	"rosterkeeper/internal/client/models"
	"rosterkeeper/internal/client/netmon"
	"rosterkeeper/internal/client/remote"
	"rosterkeeper/internal/client/repositories/groups"
	"rosterkeeper/internal/client/repositories/synclog"
	"rosterkeeper/internal/client/repositories/tokens"
	"rosterkeeper/internal/client/repositories/users"
	"rosterkeeper/internal/client/sensor"
	"rosterkeeper/internal/client/services"
	"rosterkeeper/internal/client/storage"
	"rosterkeeper/internal/client/sync"
	"rosterkeeper/internal/logging"
)

// App wires the client components together: local store, remote
// gateways, sync engines, connectivity monitor and services.
type App struct {
	cfg    *config.Config
	logger logging.Logger

	db      *sql.DB
	client  *remote.Client
	monitor *netmon.Monitor
	tokens  tokens.Repository

	groupRepo groups.Repository
	userRepo  users.Repository
	logRepo   synclog.Repository

	groups *services.GroupService
	users  *services.UserService

	groupEngine *sync.Engine[models.Group]
	userEngine  *sync.Engine[models.User]
}

// NewApp opens the local store, recovers records left in flight by a
// previous session and wires the full component graph. Close releases
// the store handle.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	groupRepo := groups.NewSQLiteRepository(db)
	userRepo := users.NewSQLiteRepository(db)
	logRepo := synclog.NewSQLiteRepository(db)
	tokenRepo := tokens.NewSQLiteRepository(db)

	tokenFn := func(ctx context.Context) (string, error) {
		t, ok, err := tokenRepo.Get(ctx, tokens.AuthTokenKey)
		if err != nil {
			return "", err
		}
		if !ok || t.Expired(time.Now().UTC()) {
			return "", nil
		}
		return t.Value, nil
	}

	client := remote.NewClient(cfg.ServerURL, remote.WithTokenFunc(tokenFn))
	monitor := netmon.NewMonitor(client, cfg.ServerURL, cfg.PingInterval, logger)

	groupBus := sensor.New[models.Group]()
	userBus := sensor.New[models.User]()

	groupEngine := sync.NewEngine("group", groupRepo, remote.NewGroupGateway(client),
		logRepo, sync.TokenFunc(tokenFn), groupBus, logger)
	userEngine := sync.NewEngine("user", userRepo, remote.NewUserGateway(client),
		logRepo, sync.TokenFunc(tokenFn), userBus, logger)

	// Records stuck in-progress can only be leftovers of a crashed
	// session; surface them as failed before anything else runs.
	if err := groupEngine.RecoverStale(ctx); err != nil {
		logger.Warn(ctx, "failed to recover stale groups", "error", err)
	}
	if err := userEngine.RecoverStale(ctx); err != nil {
		logger.Warn(ctx, "failed to recover stale users", "error", err)
	}

	// Groups sync before users so user memberships can resolve against
	// freshly confirmed groups.
	monitor.OnServerOnline(func(ctx context.Context) {
		if err := groupEngine.Cycle(ctx); err != nil {
			logger.Warn(ctx, "group sync cycle failed", "error", err)
		}
		if err := userEngine.Cycle(ctx); err != nil {
			logger.Warn(ctx, "user sync cycle failed", "error", err)
		}
	})

	return &App{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		client:      client,
		monitor:     monitor,
		tokens:      tokenRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		logRepo:     logRepo,
		groups:      services.NewGroupService(groupRepo, groupEngine, groupBus, monitor, logger),
		users:       services.NewUserService(userRepo, groupRepo, userEngine, userBus, monitor, logger),
		groupEngine: groupEngine,
		userEngine:  userEngine,
	}, nil
}

// StartMonitor launches the connectivity watcher. It probes once
// immediately, then on the configured interval until ctx is cancelled.
func (a *App) StartMonitor(ctx context.Context) {
	go a.monitor.Run(ctx)
}

// SyncAll runs one full cycle for every entity kind.
func (a *App) SyncAll(ctx context.Context) error {
	if err := a.groupEngine.Cycle(ctx); err != nil {
		return err
	}
	return a.userEngine.Cycle(ctx)
}

// Close releases the local store handle.
func (a *App) Close() error {
	return a.db.Close()
}
