package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/trogers1052/eod-connector/internal/app"
	"github.com/trogers1052/eod-connector/internal/config"
	"github.com/trogers1052/eod-connector/internal/database"
	"github.com/trogers1052/eod-connector/internal/logging"
	"github.com/trogers1052/eod-connector/internal/models"
	"github.com/trogers1052/eod-connector/internal/report"
)

func main() {
	os.Exit(run())
}

// run prints the warehouse table and the stored watermarks. It never writes.
func run() int {
	configPath := flag.String("config", defaultConfigPath(), "path to the JSON or YAML configuration file")
	symbol := flag.String("symbol", "", "only print rows for this symbol")
	limit := flag.Int("limit", 0, "print at most this many of the newest rows (requires -symbol)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger := logging.New(config.LogConfig{})
		logger.Error().Err(err).Str("path", *configPath).Msg("failed to load config")
		return 1
	}
	logger := logging.New(cfg.Log)

	ctx := context.Background()
	a, err := app.NewReadOnly(ctx, cfg)
	if errors.Is(err, database.ErrWarehouseNotFound) {
		logger.Warn().Str("path", cfg.Database.SQLitePath).Msg("warehouse not found")
		return 0
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to open warehouse")
		return 1
	}
	defer a.Close()

	records, err := loadRecords(ctx, a, strings.ToUpper(*symbol), *limit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to query eod_historical_data")
		return 1
	}
	if err := report.WritePrices(os.Stdout, records); err != nil {
		logger.Error().Err(err).Msg("failed to print records")
		return 1
	}

	watermarks, err := a.Watermarks(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read watermarks")
		return 1
	}
	if err := report.WriteWatermarks(os.Stdout, watermarks); err != nil {
		logger.Error().Err(err).Msg("failed to print watermarks")
		return 1
	}
	return 0
}

func loadRecords(ctx context.Context, a *app.App, symbol string, limit int) ([]*models.PriceRecord, error) {
	if symbol != "" && limit > 0 {
		return a.DB.ListPriceRecords(ctx, symbol, limit)
	}

	records, err := a.DB.ListAllPriceRecords(ctx)
	if err != nil || symbol == "" {
		return records, err
	}
	return slices.DeleteFunc(records, func(r *models.PriceRecord) bool {
		return r.Symbol != symbol
	}), nil
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configuration.json"
}
