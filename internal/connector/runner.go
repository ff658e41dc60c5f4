package connector

//go:generate mockgen -package=connector_test -destination=mock_connector_test.go . Fetcher,Publisher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/eod-connector/internal/fmp"
	"github.com/trogers1052/eod-connector/internal/models"
	"github.com/trogers1052/eod-connector/internal/state"
	"github.com/trogers1052/eod-connector/internal/transform"
)

// Fetcher retrieves raw daily history for a symbol
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, since time.Time) ([]fmp.HistoricalEntry, error)
}

// Loader upserts price records into the warehouse
type Loader interface {
	UpsertPriceRecords(ctx context.Context, records []models.PriceRecord) (int, error)
}

// Publisher announces per-symbol sync outcomes
type Publisher interface {
	PublishSymbolSynced(ctx context.Context, symbol string, rowsWritten int, watermark time.Time) error
	PublishSymbolSkipped(ctx context.Context, symbol string, cause error) error
	PublishRunAborted(ctx context.Context, symbol string, cause error) error
}

// Runner performs sequential sync passes over the configured symbols
type Runner struct {
	symbols   []string
	fetcher   Fetcher
	store     state.Store
	loader    Loader
	publisher Publisher
	startDate time.Time
	logger    zerolog.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithPublisher publishes a sync event for every symbol outcome
func WithPublisher(p Publisher) Option {
	return func(r *Runner) {
		r.publisher = p
	}
}

// WithStartDate bounds the first fetch of a symbol that has no watermark yet
func WithStartDate(date time.Time) Option {
	return func(r *Runner) {
		r.startDate = date
	}
}

// NewRunner creates a runner for symbols, processed in the given order
func NewRunner(symbols []string, fetcher Fetcher, store state.Store, loader Loader, logger zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		symbols: slices.Clone(symbols),
		fetcher: fetcher,
		store:   store,
		loader:  loader,
		logger:  logger.With().Str("component", "connector").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one pass. Failures for a single symbol are logged and the
// symbol is skipped. An authentication failure or a cancelled context stops
// the pass and is returned; symbols committed before that point keep their rows.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{StartedAt: time.Now().UTC()}
	r.logger.Info().Strs("symbols", r.symbols).Msg("starting sync run")

	for _, symbol := range r.symbols {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now().UTC()
			return summary, fmt.Errorf("sync run cancelled: %w", err)
		}

		result, err := r.syncSymbol(ctx, symbol)
		if err == nil {
			summary.Results = append(summary.Results, result)
			r.logger.Info().
				Str("symbol", symbol).
				Int("rows_written", result.RowsWritten).
				Str("watermark", formatDate(result.Watermark)).
				Msg("symbol synced")
			r.publish(func(p Publisher) error {
				return p.PublishSymbolSynced(ctx, symbol, result.RowsWritten, result.Watermark)
			})
			continue
		}

		var authErr *fmp.AuthError
		if errors.As(err, &authErr) {
			summary.FinishedAt = time.Now().UTC()
			r.logger.Error().Err(err).Str("symbol", symbol).Msg("authentication rejected, aborting run")
			r.publish(func(p Publisher) error {
				return p.PublishRunAborted(ctx, symbol, err)
			})
			return summary, fmt.Errorf("aborting sync run: %w", err)
		}
		if ctx.Err() != nil {
			summary.FinishedAt = time.Now().UTC()
			return summary, fmt.Errorf("sync run cancelled: %w", ctx.Err())
		}

		result.Status = StatusSkipped
		result.Err = err
		summary.Results = append(summary.Results, result)

		event := r.logger.Warn().Err(err).Str("symbol", symbol)
		var parseErr *fmp.ParseError
		if errors.As(err, &parseErr) {
			event = event.Str("payload", parseErr.Payload)
		}
		event.Msg("skipping symbol")

		r.publish(func(p Publisher) error {
			return p.PublishSymbolSkipped(ctx, symbol, err)
		})
	}

	summary.FinishedAt = time.Now().UTC()
	r.logger.Info().
		Int("synced", summary.Synced()).
		Int("skipped", summary.Skipped()).
		Int("rows_written", summary.RowsWritten()).
		Dur("duration", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("sync run complete")
	return summary, nil
}

func (r *Runner) syncSymbol(ctx context.Context, symbol string) (SymbolResult, error) {
	result := SymbolResult{Symbol: symbol}

	watermark, ok, err := r.store.GetWatermark(ctx, symbol)
	if err != nil {
		return result, fmt.Errorf("failed to read watermark: %w", err)
	}

	since := r.startDate
	if ok {
		since = watermark
		result.Watermark = watermark
	}

	entries, err := r.fetcher.FetchHistory(ctx, symbol, since)
	if err != nil {
		return result, err
	}

	var floor time.Time
	if ok {
		floor = watermark
	}
	records := slices.Collect(transform.ToRecords(symbol, entries, floor, r.logger))
	r.logger.Debug().
		Str("symbol", symbol).
		Int("fetched", len(entries)).
		Int("new", len(records)).
		Msg("transformed history")

	if len(records) == 0 {
		result.Status = StatusOK
		return result, nil
	}

	written, err := r.loader.UpsertPriceRecords(ctx, records)
	if err != nil {
		return result, fmt.Errorf("failed to load records: %w", err)
	}
	result.RowsWritten = written

	latest := transform.MaxDate(records)
	if !ok || latest.After(watermark) {
		if err := r.store.SetWatermark(ctx, symbol, latest); err != nil {
			return result, fmt.Errorf("failed to advance watermark: %w", err)
		}
		result.Watermark = latest
	}

	result.Status = StatusOK
	return result, nil
}

func (r *Runner) publish(send func(Publisher) error) {
	if r.publisher == nil {
		return
	}
	if err := send(r.publisher); err != nil {
		r.logger.Warn().Err(err).Msg("failed to publish sync event")
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.DateLayout)
}
