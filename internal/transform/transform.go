package transform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/eod-connector/internal/fmp"
	"github.com/trogers1052/eod-connector/internal/models"
)

// RecordFieldError describes a single upstream entry that could not be mapped
type RecordFieldError struct {
	Symbol string
	Date   string
	Field  string
	Err    error
}

func (e *RecordFieldError) Error() string {
	return fmt.Sprintf("invalid %s for %s on %q: %v", e.Field, e.Symbol, e.Date, e.Err)
}

func (e *RecordFieldError) Unwrap() error { return e.Err }

// ToRecords maps raw entries to price records, skipping entries dated on or
// before watermark when watermark is non-zero. Entries with a missing or
// malformed field are dropped with a warning. The returned sequence is lazy
// and can be ranged over any number of times.
func ToRecords(symbol string, entries []fmp.HistoricalEntry, watermark time.Time, logger zerolog.Logger) iter.Seq[models.PriceRecord] {
	return func(yield func(models.PriceRecord) bool) {
		for _, entry := range entries {
			record, err := ToRecord(symbol, entry)
			if err != nil {
				logger.Warn().Err(err).Str("symbol", symbol).Str("date", entry.Date).Msg("dropping malformed entry")
				continue
			}
			if !watermark.IsZero() && !record.Date.After(watermark) {
				continue
			}
			if !yield(record) {
				return
			}
		}
	}
}

// ToRecord maps one raw entry to a price record
func ToRecord(symbol string, entry fmp.HistoricalEntry) (models.PriceRecord, error) {
	date, err := models.ParseDate(entry.Date)
	if err != nil {
		return models.PriceRecord{}, &RecordFieldError{Symbol: symbol, Date: entry.Date, Field: "date", Err: err}
	}

	record := models.PriceRecord{Symbol: symbol, Date: date}
	fields := []struct {
		name string
		raw  json.RawMessage
		dst  *decimal.Decimal
	}{
		{"open", entry.Open, &record.Open},
		{"close", entry.Close, &record.Close},
		{"high", entry.High, &record.High},
		{"low", entry.Low, &record.Low},
		{"changeOverTime", entry.ChangeOverTime, &record.ChangeOverTime},
		{"changePercent", entry.ChangePercent, &record.ChangePercent},
	}
	for _, f := range fields {
		v, err := parseNumber(f.raw)
		if err != nil {
			return models.PriceRecord{}, &RecordFieldError{Symbol: symbol, Date: entry.Date, Field: f.name, Err: err}
		}
		*f.dst = v
	}
	return record, nil
}

// MaxDate returns the newest date among records, or the zero time if there are none
func MaxDate(records []models.PriceRecord) time.Time {
	var latest time.Time
	for _, r := range records {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest
}

// parseNumber accepts JSON numbers and numeric strings
func parseNumber(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, fmt.Errorf("missing value")
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, err
		}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not numeric: %s", raw)
	}
	return d, nil
}
