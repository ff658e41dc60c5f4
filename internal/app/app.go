package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/trogers1052/eod-connector/internal/config"
	"github.com/trogers1052/eod-connector/internal/connector"
	"github.com/trogers1052/eod-connector/internal/database"
	"github.com/trogers1052/eod-connector/internal/fmp"
	"github.com/trogers1052/eod-connector/internal/kafka"
	"github.com/trogers1052/eod-connector/internal/models"
	"github.com/trogers1052/eod-connector/internal/state"
)

// App holds the wired components shared by the entry points
type App struct {
	Config *config.Config
	DB     *database.DB
	Store  state.Store
	Runner *connector.Runner

	closers []func() error
}

// New connects to the warehouse, applies migrations and wires the runner.
// Callers must Close the returned App.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	a := &App{Config: cfg, DB: db, closers: []func() error{db.Close}}

	if err := db.Migrate(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("warehouse ready")

	store, closeStore, err := state.Open(ctx, cfg.State, db)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	a.Store = store
	a.closers = append(a.closers, closeStore)

	clientOpts := []fmp.ClientOption{
		fmp.WithBaseURL(cfg.BaseURL),
		fmp.WithTimeout(cfg.RequestTimeout()),
		fmp.WithRateLimit(cfg.RequestsPerMinute),
	}
	if cfg.UserAgent != "" {
		clientOpts = append(clientOpts, fmp.WithUserAgent(cfg.UserAgent))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, fmp.WithProxy(cfg.Proxy))
	}
	client := fmp.NewClient(cfg.APIKey, clientOpts...)

	var opts []connector.Option
	if cfg.StartDate != "" {
		start, err := models.ParseDate(cfg.StartDate)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("invalid start_date: %w", err)
		}
		opts = append(opts, connector.WithStartDate(start))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		opts = append(opts, connector.WithPublisher(producer))
		a.closers = append(a.closers, producer.Close)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing sync events")
	}

	a.Runner = connector.NewRunner(cfg.Symbols, client, store, db, logger, opts...)
	return a, nil
}

// NewReadOnly opens an existing warehouse and the state store without
// migrating or wiring a runner, for inspection.
func NewReadOnly(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.OpenReadOnly(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	a := &App{Config: cfg, DB: db, closers: []func() error{db.Close}}

	store, closeStore, err := state.Open(ctx, cfg.State, db)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	a.Store = store
	a.closers = append(a.closers, closeStore)
	return a, nil
}

// Watermarks returns the stored watermark of every configured symbol. The
// table backend lists the whole table instead.
func (a *App) Watermarks(ctx context.Context) ([]*models.Watermark, error) {
	if a.Config.State.Backend == "table" {
		return a.DB.ListWatermarks(ctx)
	}

	var watermarks []*models.Watermark
	for _, symbol := range a.Config.Symbols {
		date, ok, err := a.Store.GetWatermark(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if ok {
			watermarks = append(watermarks, &models.Watermark{Symbol: symbol, LastDate: date})
		}
	}
	return watermarks, nil
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range slices.Backward(a.closers) {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
