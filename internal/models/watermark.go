package models

import (
	"encoding/json"
	"time"
)

// Watermark is the last successfully ingested trading date for a symbol
type Watermark struct {
	Symbol    string    `json:"symbol"`
	LastDate  time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON renders the last date in ISO calendar form
func (w Watermark) MarshalJSON() ([]byte, error) {
	type alias Watermark
	return json.Marshal(struct {
		alias
		LastDate string `json:"last_date"`
	}{alias(w), w.LastDate.Format(DateLayout)})
}
