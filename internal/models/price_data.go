package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for the date column and watermarks
const DateLayout = "2006-01-02"

// PriceRecord represents one end-of-day price row in eod_historical_data
type PriceRecord struct {
	Symbol         string          `json:"symbol"`
	Date           time.Time       `json:"-"`
	Open           decimal.Decimal `json:"open"`
	Close          decimal.Decimal `json:"close"`
	High           decimal.Decimal `json:"high"`
	Low            decimal.Decimal `json:"low"`
	ChangeOverTime decimal.Decimal `json:"changeOverTime"`
	ChangePercent  decimal.Decimal `json:"changePercent"`
}

// DateString returns the record date in ISO calendar form
func (p PriceRecord) DateString() string {
	return p.Date.Format(DateLayout)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD) as a UTC midnight time
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// MarshalJSON renders the date in ISO calendar form
func (p PriceRecord) MarshalJSON() ([]byte, error) {
	type alias PriceRecord
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias(p), p.DateString()})
}
