package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/eod-connector/internal/models"
)

const upsertPriceRecordQuery = `
	INSERT INTO eod_historical_data (symbol, date, open, close, high, low, "changeOverTime", "changePercent")
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (symbol, date) DO UPDATE SET
		open = EXCLUDED.open,
		close = EXCLUDED.close,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		"changeOverTime" = EXCLUDED."changeOverTime",
		"changePercent" = EXCLUDED."changePercent"
`

// ErrPriceRecordNotFound is returned when no row exists for a (symbol, date) key
var ErrPriceRecordNotFound = errors.New("price record not found")

const selectPriceRecordColumns = `
	SELECT symbol, date, open, close, high, low, "changeOverTime", "changePercent"
	FROM eod_historical_data
`

// UpsertPriceRecords writes records in a single transaction, replacing any
// existing row with the same (symbol, date). It returns the number of rows written.
func (db *DB) UpsertPriceRecords(ctx context.Context, records []models.PriceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, db.rebind(upsertPriceRecordQuery))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range records {
		if _, err := stmt.ExecContext(ctx, priceRecordArgs(p)...); err != nil {
			return 0, fmt.Errorf("failed to upsert price record for %s on %s: %w", p.Symbol, p.DateString(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(records), nil
}

// GetPriceRecord retrieves the record for a specific symbol and date
func (db *DB) GetPriceRecord(ctx context.Context, symbol string, date time.Time) (*models.PriceRecord, error) {
	query := selectPriceRecordColumns + `WHERE symbol = $1 AND date = $2`

	p, err := scanPriceRecord(db.conn.QueryRowContext(ctx, db.rebind(query), symbol, date.Format(models.DateLayout)))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w for %s on %s", ErrPriceRecordNotFound, symbol, date.Format(models.DateLayout))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price record: %w", err)
	}
	return p, nil
}

// ListPriceRecords retrieves the most recent records for a symbol, ordered by date descending
func (db *DB) ListPriceRecords(ctx context.Context, symbol string, limit int) ([]*models.PriceRecord, error) {
	query := selectPriceRecordColumns + `
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT $2
	`
	return db.queryPriceRecords(ctx, query, symbol, limit)
}

// GetPriceRecordRange retrieves records for a symbol within an inclusive date range, oldest first
func (db *DB) GetPriceRecordRange(ctx context.Context, symbol string, startDate, endDate time.Time) ([]*models.PriceRecord, error) {
	query := selectPriceRecordColumns + `
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	return db.queryPriceRecords(ctx, query, symbol, startDate.Format(models.DateLayout), endDate.Format(models.DateLayout))
}

// ListAllPriceRecords retrieves every record ordered by symbol and date
func (db *DB) ListAllPriceRecords(ctx context.Context) ([]*models.PriceRecord, error) {
	return db.queryPriceRecords(ctx, selectPriceRecordColumns+`ORDER BY symbol ASC, date ASC`)
}

// CountPriceRecords returns the number of stored records for a symbol
func (db *DB) CountPriceRecords(ctx context.Context, symbol string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, db.rebind(`SELECT COUNT(*) FROM eod_historical_data WHERE symbol = $1`), symbol).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count price records: %w", err)
	}
	return count, nil
}

func (db *DB) queryPriceRecords(ctx context.Context, query string, args ...any) ([]*models.PriceRecord, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get price records: %w", err)
	}
	defer rows.Close()

	var records []*models.PriceRecord
	for rows.Next() {
		p, err := scanPriceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price record: %w", err)
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPriceRecord(row rowScanner) (*models.PriceRecord, error) {
	var p models.PriceRecord
	var date string
	var open, closePrice, high, low, changeOverTime, changePercent float64

	if err := row.Scan(&p.Symbol, &date, &open, &closePrice, &high, &low, &changeOverTime, &changePercent); err != nil {
		return nil, err
	}

	parsed, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	p.Date = parsed
	p.Open = decimal.NewFromFloat(open)
	p.Close = decimal.NewFromFloat(closePrice)
	p.High = decimal.NewFromFloat(high)
	p.Low = decimal.NewFromFloat(low)
	p.ChangeOverTime = decimal.NewFromFloat(changeOverTime)
	p.ChangePercent = decimal.NewFromFloat(changePercent)
	return &p, nil
}

// priceRecordArgs returns the upsert arguments; numeric columns are FLOAT
func priceRecordArgs(p models.PriceRecord) []any {
	return []any{
		p.Symbol, p.DateString(),
		p.Open.InexactFloat64(), p.Close.InexactFloat64(),
		p.High.InexactFloat64(), p.Low.InexactFloat64(),
		p.ChangeOverTime.InexactFloat64(), p.ChangePercent.InexactFloat64(),
	}
}
