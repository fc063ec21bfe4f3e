package factory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/scorepad/internal/config"
	"github.com/mcoot/scorepad/internal/dependencies/clock"
	"github.com/mcoot/scorepad/internal/dependencies/random"
	"github.com/mcoot/scorepad/internal/services/backup"
	"github.com/mcoot/scorepad/internal/services/play"
	"github.com/mcoot/scorepad/internal/services/repository"
	"github.com/mcoot/scorepad/internal/services/store"
	"github.com/mcoot/scorepad/internal/services/transfer"
	"github.com/mcoot/scorepad/internal/storage"
	"github.com/mcoot/scorepad/internal/storage/memory"
	redisstorage "github.com/mcoot/scorepad/internal/storage/redis"
	"github.com/mcoot/scorepad/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger

	// Services
	Store      *store.Store
	Repository *repository.Repository
	Transfer   *transfer.Service
	Play       *play.Controller
	Backup     *backup.Worker

	// Recovered reports whether startup restored any collection from backup
	Recovered bool
}

// New opens the configured backend, wires every service and restores
// collections from backup before anything reads them
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	kv, err := OpenStorage(cfg)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(kv, clock.New(), random.New(), cfg.BackupInterval, logger)
	app.recover(ctx)
	return app, nil
}

// OpenStorage creates the key/value backend selected by cfg
func OpenStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageSQLite:
		return sqlite.Open(cfg.DBPath)
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		if cfg.RedisKeyPrefix != "" {
			redisCfg.KeyPrefix = cfg.RedisKeyPrefix
		}
		return redisstorage.New(redisCfg)
	default:
		return nil, fmt.Errorf("invalid storage %q: must be memory, sqlite or redis", cfg.Storage)
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}

// recover runs backup recovery. A partial failure is logged and startup
// continues with whatever could be read.
func (a *App) recover(ctx context.Context) {
	recovered, err := a.Repository.Recover(ctx)
	if err != nil {
		a.Logger.Warn("backup recovery incomplete", slog.String("error", err.Error()))
	}
	a.Recovered = recovered
	if recovered {
		a.Logger.Info("data recovered from backup")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(kv storage.Storage, clk clock.Clock, rnd random.Random, backupInterval time.Duration, logger *slog.Logger) *App {
	st := store.New(kv, clk, logger)
	repo := repository.New(st, clk, rnd, logger)

	return &App{
		Storage:    kv,
		Clock:      clk,
		Random:     rnd,
		Logger:     logger,
		Store:      st,
		Repository: repo,
		Transfer:   transfer.New(st, clk, logger),
		Play:       play.NewController(repo, clk, rnd, logger),
		Backup:     backup.New(st, backupInterval, logger),
	}
}
