package main

import (
	"context"
	"fmt"

	"github.com/senyabanana/geega-crm/internal/db"
	"github.com/senyabanana/geega-crm/internal/logger"
	"github.com/senyabanana/geega-crm/internal/repository"
	"github.com/senyabanana/geega-crm/internal/router/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// application - собранные зависимости для команд serve и export.
type application struct {
	cfg        config.Config
	logger     *zap.Logger
	tenders    repository.TenderRepository
	references repository.ReferenceRepository
	sequence   repository.SequenceGenerator

	dbPool *pgxpool.Pool
	redis  *redis.Client
}

func loadConfigAndLogger(configPath string) (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("cannot load config: %w", err)
	}
	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

// newApplication подключает хранилище и генератор номеров согласно конфигурации.
func newApplication(ctx context.Context, cfg config.Config, log *zap.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: log}

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		if err := db.RunMigrations(cfg, log); err != nil {
			return nil, err
		}
		dbPool, err := db.InitDb(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("error initializing database: %w", err)
		}
		app.dbPool = dbPool
		app.tenders = repository.NewPostgresTenderRepository(dbPool)
		app.references = repository.NewPostgresReferenceRepository(dbPool)
	case config.BackendMemory:
		memory := repository.NewMemoryRepository()
		app.tenders = memory
		app.references = memory
	}

	switch cfg.SequenceBackend {
	case config.BackendPostgres:
		app.sequence = repository.NewPostgresSequence(app.dbPool, cfg.SequencePrefix, cfg.SequencePadding)
	case config.BackendRedis:
		client, err := db.InitRedis(ctx, cfg)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.redis = client
		app.sequence = repository.NewRedisSequence(client, cfg.SequencePrefix, cfg.SequencePadding)
	case config.BackendMemory:
		app.sequence = repository.NewMemorySequence(cfg.SequencePrefix, cfg.SequencePadding)
	}

	log.Info("application initialized",
		zap.String("storage", cfg.StorageBackend),
		zap.String("sequence", cfg.SequenceBackend))
	return app, nil
}

func (a *application) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}
}
