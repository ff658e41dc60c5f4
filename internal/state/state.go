package state

import (
	"context"
	"fmt"
	"time"

	"github.com/trogers1052/eod-connector/internal/config"
	"github.com/trogers1052/eod-connector/internal/database"
)

// Store persists per-symbol watermarks. Implementations write through on
// every SetWatermark and ignore sets that would move a watermark backwards.
type Store interface {
	GetWatermark(ctx context.Context, symbol string) (time.Time, bool, error)
	SetWatermark(ctx context.Context, symbol string, date time.Time) error
}

// Open returns the store selected by cfg.Backend. The table backend reuses
// the warehouse connection.
func Open(ctx context.Context, cfg config.StateConfig, db *database.DB) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "table":
		return db, noop, nil
	case "file":
		return NewFileStore(cfg.File), noop, nil
	case "redis":
		store, err := NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported state backend: %s", cfg.Backend)
	}
}
