// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/auth"
	authpg "github.com/taskloom/taskloom/internal/auth/postgres"
	"github.com/taskloom/taskloom/internal/httpapi"
	"github.com/taskloom/taskloom/internal/logging"
	"github.com/taskloom/taskloom/internal/observability"
	"github.com/taskloom/taskloom/internal/store"
	"github.com/taskloom/taskloom/internal/task"
	taskpg "github.com/taskloom/taskloom/internal/task/postgres"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server, and the metrics/health listener when
one is configured.`,
		RunE: runServe,
	}

	cmd.Flags().String("http-addr", defaultHTTPAddr, "API listen address")
	cmd.Flags().String("metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", defaultLogFormat, "log format (json or text)")
	cmd.Flags().String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	cmd.Flags().Int("token-ttl-minutes", defaultTTLMinutes, "access token lifetime in minutes")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("taskloom", version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	logger := slog.Default()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Info("connected to database")

	hasher := auth.NewArgon2idHasher()
	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret:    cfg.Token.Secret,
		Algorithm: cfg.Token.Algorithm,
		TTL:       time.Duration(cfg.Token.TTLMinutes) * time.Minute,
	})
	if err != nil {
		return err
	}

	userRepo := authpg.NewUserRepository(pool)
	taskRepo := taskpg.NewTaskRepository(pool)

	authSvc, err := auth.NewServiceWithLogger(userRepo, hasher, codec, logger)
	if err != nil {
		return err
	}
	userSvc, err := auth.NewUserServiceWithLogger(userRepo, hasher, logger)
	if err != nil {
		return err
	}
	taskSvc, err := task.NewServiceWithLogger(taskRepo, logger)
	if err != nil {
		return err
	}

	// Observability listener, when configured. Readiness follows the
	// database connection.
	var (
		metrics   *observability.Metrics
		obsServer *observability.Server
	)
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrCh, obsErr := obsServer.Start()
		if obsErr != nil {
			return obsErr
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	apiServer, err := httpapi.NewServer(cfg.HTTP.Addr, authSvc, userSvc, taskSvc, logger, metrics)
	if err != nil {
		return err
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		if obsServer != nil {
			stopObservability(obsServer)
		}
		return err
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "api")

	cmd.Println("Taskloom started")
	logger.Info("taskloom ready", "http_addr", apiServer.Addr())

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

func stopObservability(obsServer *observability.Server) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := obsServer.Stop(shutdownCtx); err != nil {
		slog.Warn("failed to stop observability server during cleanup", "error", err)
	}
}

// monitorServerErrors watches a server's error channel and cancels the
// context on error, so one failing listener brings the process down
// cleanly. It exits when an error arrives, the channel closes, or the
// context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}
