package models

import "time"

// Sync event types
const (
	EventSymbolSynced  = "SYMBOL_SYNCED"
	EventSymbolSkipped = "SYMBOL_SKIPPED"
	EventRunAborted    = "RUN_ABORTED"
)

// SyncEvent represents a Kafka event describing the outcome of one symbol's sync
type SyncEvent struct {
	EventType   string    `json:"event_type"`
	Symbol      string    `json:"symbol"`
	RowsWritten int       `json:"rows_written"`
	Watermark   string    `json:"watermark,omitempty"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
