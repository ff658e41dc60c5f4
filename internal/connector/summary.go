package connector

import "time"

// Status is the outcome of one symbol within a run
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
)

// SymbolResult records what happened to one symbol
type SymbolResult struct {
	Symbol      string
	Status      Status
	RowsWritten int
	Watermark   time.Time
	Err         error
}

// RunSummary collects the per-symbol results of a run
type RunSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []SymbolResult
}

// Synced returns the number of symbols that completed
func (s *RunSummary) Synced() int {
	return s.count(StatusOK)
}

// Skipped returns the number of symbols skipped after a recoverable error
func (s *RunSummary) Skipped() int {
	return s.count(StatusSkipped)
}

// RowsWritten returns the total rows upserted across all symbols
func (s *RunSummary) RowsWritten() int {
	total := 0
	for _, r := range s.Results {
		total += r.RowsWritten
	}
	return total
}

func (s *RunSummary) count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}
