package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/trogers1052/eod-connector/internal/api"
	"github.com/trogers1052/eod-connector/internal/app"
	"github.com/trogers1052/eod-connector/internal/config"
	"github.com/trogers1052/eod-connector/internal/logging"
	"github.com/trogers1052/eod-connector/internal/scheduler"
)

func main() {
	os.Exit(run())
}

// run serves the read API and, when a cron expression is configured, runs
// sync passes on that schedule until SIGINT or SIGTERM.
func run() int {
	configPath := flag.String("config", defaultConfigPath(), "path to the JSON or YAML configuration file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger := logging.New(config.LogConfig{})
		logger.Error().Err(err).Str("path", *configPath).Msg("failed to load config")
		return 1
	}
	logger := logging.New(cfg.Log)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid config")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start server")
		return 1
	}
	defer a.Close()

	if cfg.Schedule.Cron != "" {
		sched := scheduler.New(ctx, a.Runner, logger)
		if err := sched.Register(cfg.Schedule.Cron); err != nil {
			logger.Error().Err(err).Msg("invalid schedule")
			return 1
		}
		sched.Start()
		defer sched.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			logger.Info().Msg("RUN_ON_START enabled, syncing now")
			sched.Trigger()
		}
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           api.SetupRoutes(api.NewHandler(a.DB, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server failed")
			return 1
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received, stopping...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server shutdown incomplete")
	}
	return 0
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configuration.json"
}
