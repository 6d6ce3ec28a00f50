package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/undeadops/golinks/internal/api"
	"github.com/undeadops/golinks/internal/config"
	"github.com/undeadops/golinks/internal/db"
	"github.com/undeadops/golinks/internal/store"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the short link HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.Int("port", 5000, "port to listen on")
	flags.String("backend", config.BackendMemory, "link backend: memory, redis, sqlite or dynamodb")
	flags.String("redis-addr", "localhost:6379", "Redis address")
	flags.String("sqlite-path", "golinks.db", "SQLite database file")
	flags.String("table", "golinks", "DynamoDB table name")
	flags.String("region", "us-east-1", "AWS region")
	flags.String("ddb-endpoint", "", "DynamoDB endpoint URL")
	flags.Bool("debug", false, "Enable debug mode")

	for key, name := range map[string]string{
		"server.port":       "port",
		"backend":           "backend",
		"redis.addr":        "redis-addr",
		"sqlite.path":       "sqlite-path",
		"dynamodb.table":    "table",
		"dynamodb.region":   "region",
		"dynamodb.endpoint": "ddb-endpoint",
		"debug":             "debug",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := httplog.NewLogger(appName, httplog.Options{
		JSON:    true,
		Concise: true,
		Tags: map[string]string{
			"version": version,
			"app":     appName,
		},
	})
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger.Info().Str("version", version).Msgf("Starting %s version %s", appName, version)

	backend, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Err(err).Msg("Failed to close backend")
		}
	}()

	router := api.Router(store.New(backend), logger)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().Msgf("Starting %s server on port %d", appName, cfg.Server.Port)
	// Run server in the background
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for an interrupt or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		logger.Err(err).Msg("Server error")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info().Msgf("Shutting down %s server", appName)
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Err(err).Msg("Graceful shutdown failed")
		return err
	}
	return nil
}
