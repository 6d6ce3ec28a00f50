package db

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/undeadops/golinks/internal/config"
	"github.com/undeadops/golinks/internal/store"
)

// Backend is a store.Backend that owns a connection to release on shutdown.
type Backend interface {
	store.Backend
	io.Closer
}

var (
	_ Backend = (*DynamoDB)(nil)
	_ Backend = (*Redis)(nil)
	_ Backend = (*SQLite)(nil)
	_ Backend = (*Memory)(nil)
)

// Open connects to the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Backend, error) {
	logger.Info().Str("backend", cfg.Backend).Msg("Setting up link backend...")

	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warn().Msg("Using in-memory backend, links are lost on restart")
		return NewMemory(), nil
	case config.BackendRedis:
		return DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLite.Path)
	case config.BackendDynamoDB:
		client := &DynamoDB{
			Region:      cfg.DynamoDB.Region,
			Table:       cfg.DynamoDB.Table,
			DDBEndpoint: cfg.DynamoDB.Endpoint,
			Logger:      logger,
		}
		if err := SetupDynamoDB(ctx, client); err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
