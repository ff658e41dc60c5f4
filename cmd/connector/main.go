package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/trogers1052/eod-connector/internal/app"
	"github.com/trogers1052/eod-connector/internal/config"
	"github.com/trogers1052/eod-connector/internal/fmp"
	"github.com/trogers1052/eod-connector/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run performs a single sync pass and returns the process exit status
func run(args []string) int {
	flags := flag.NewFlagSet("connector", flag.ContinueOnError)
	configPath := flags.String("config", defaultConfigPath(), "path to the JSON or YAML configuration file")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	// .env is optional
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
		logger.Error().Err(err).Msg("failed to start connector")
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to release resources")
		}
	}()

	summary, err := a.Runner.Run(ctx)
	if err != nil {
		var authErr *fmp.AuthError
		if errors.As(err, &authErr) {
			logger.Error().Err(err).Msg("api key rejected")
		} else {
			logger.Error().Err(err).Msg("sync run failed")
		}
		return 1
	}

	for _, r := range summary.Results {
		if r.Err != nil {
			logger.Warn().Str("symbol", r.Symbol).Err(r.Err).Msg("symbol was skipped")
		}
	}
	return 0
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configuration.json"
}
