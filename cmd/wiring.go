package main

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/magicboard/internal/adapters/repository"
	app "github.com/okian/magicboard/internal/app"
	"github.com/okian/magicboard/internal/config"
	"github.com/okian/magicboard/internal/domain/rarity"
	"github.com/okian/magicboard/pkg/logger"
)

// setup loads configuration and initializes logging on stderr so command
// output on stdout stays clean.
func setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithJSON(cfg.LogJSON)); err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(context.Background(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, log, nil
}

// openStore builds the configured member store wrapped with metrics.
func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return repository.Instrument(repository.NewMemoryStore()), nil
	case config.StoreSQLite:
		s, err := repository.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repository.Instrument(s), nil
	case config.StoreRedis:
		s := repository.NewRedisStore(
			repository.WithRedisAddr(cfg.RedisAddr),
			repository.WithRedisDB(cfg.RedisDB),
			repository.WithKeyPrefix(cfg.RedisKeyPrefix),
		)
		return repository.Instrument(s), nil
	default:
		return nil, fmt.Errorf("%w: unknown store_driver %q", config.ErrInvalidConfig, cfg.StoreDriver)
	}
}

// newService wires the service from configuration over store.
func newService(cfg *config.Config, store repository.Store, log logger.Logger) *app.Service {
	classifier := rarity.NewClassifier(
		rarity.WithReservedHandles(cfg.ReservedHandles),
		rarity.WithPrivilegedRoles(cfg.PrivilegedRoles),
	)
	return app.New(
		app.WithStore(store),
		app.WithClassifier(classifier),
		app.WithPageSizes(cfg.DefaultPageSize, cfg.MaxPageSize),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithLogger(log.Named("service")),
	)
}
