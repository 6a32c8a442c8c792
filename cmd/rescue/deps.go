package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/rescue/internal/config"
	"github.com/MikeSquared-Agency/rescue/internal/hermes"
	"github.com/MikeSquared-Agency/rescue/internal/store"
)

// openStore connects to Postgres when DATABASE_URL is set, SQLite when a
// path is given, and returns a nil store otherwise. The returned func
// releases it.
func openStore(ctx context.Context, cfg config.Config, sqlitePath string, logger *slog.Logger) (store.Documents, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("database connected", "driver", "postgres")
		return db, db.Close, nil

	case sqlitePath != "":
		db, err := store.OpenSQLite(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("database opened", "driver", "sqlite", "path", sqlitePath)
		return db, func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close sqlite", "error", err)
			}
		}, nil
	}

	logger.Warn("no document store configured, documents are not persisted")
	return nil, func() {}, nil
}

// connectBus returns a NATS client, or nil when NATS_URL is unset.
func connectBus(ctx context.Context, cfg config.Config, logger *slog.Logger) (*hermes.Client, error) {
	if cfg.NatsURL == "" {
		return nil, nil
	}
	client, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("NATS connected", "url", cfg.NatsURL)
	return client, nil
}
