package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/eod-connector/internal/models"
)

// GetWatermark returns the last ingested date for symbol. ok is false when no
// watermark has been stored yet.
func (db *DB) GetWatermark(ctx context.Context, symbol string) (time.Time, bool, error) {
	var lastDate string
	err := db.conn.QueryRowContext(ctx, db.rebind(`SELECT last_date FROM sync_watermarks WHERE symbol = $1`), symbol).Scan(&lastDate)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get watermark for %s: %w", symbol, err)
	}

	date, err := models.ParseDate(lastDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid stored watermark for %s: %w", symbol, err)
	}
	return date, true, nil
}

// SetWatermark stores date as the watermark for symbol. An existing newer
// watermark is left untouched.
func (db *DB) SetWatermark(ctx context.Context, symbol string, date time.Time) error {
	query := `
		INSERT INTO sync_watermarks (symbol, last_date, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol) DO UPDATE SET
			last_date = EXCLUDED.last_date,
			updated_at = EXCLUDED.updated_at
		WHERE sync_watermarks.last_date < EXCLUDED.last_date
	`
	_, err := db.conn.ExecContext(ctx, db.rebind(query), symbol, date.Format(models.DateLayout), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set watermark for %s: %w", symbol, err)
	}
	return nil
}

// ListWatermarks returns all stored watermarks ordered by symbol
func (db *DB) ListWatermarks(ctx context.Context) ([]*models.Watermark, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT symbol, last_date, updated_at FROM sync_watermarks ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list watermarks: %w", err)
	}
	defer rows.Close()

	var watermarks []*models.Watermark
	for rows.Next() {
		var w models.Watermark
		var lastDate string
		if err := rows.Scan(&w.Symbol, &lastDate, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watermark: %w", err)
		}
		if w.LastDate, err = models.ParseDate(lastDate); err != nil {
			return nil, fmt.Errorf("invalid stored watermark for %s: %w", w.Symbol, err)
		}
		watermarks = append(watermarks, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watermarks: %w", err)
	}
	return watermarks, nil
}
