package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trogers1052/eod-connector/internal/models"
)

// advanceScript sets the hash field only when the new date is later.
// ISO dates compare correctly as strings.
var advanceScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], ARGV[1])
if current and current >= ARGV[2] then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

// RedisStore keeps watermarks in a single Redis hash
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to url and verifies the connection
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, prefix), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, key: prefix + ":watermarks"}
}

// GetWatermark returns the stored date for symbol
func (s *RedisStore) GetWatermark(ctx context.Context, symbol string) (time.Time, bool, error) {
	raw, err := s.client.HGet(ctx, s.key, symbol).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get watermark for %s: %w", symbol, err)
	}

	date, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid stored watermark for %s: %w", symbol, err)
	}
	return date, true, nil
}

// SetWatermark stores date for symbol unless an equal or newer date is already stored
func (s *RedisStore) SetWatermark(ctx context.Context, symbol string, date time.Time) error {
	err := advanceScript.Run(ctx, s.client, []string{s.key}, symbol, date.Format(models.DateLayout)).Err()
	if err != nil {
		return fmt.Errorf("failed to set watermark for %s: %w", symbol, err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
