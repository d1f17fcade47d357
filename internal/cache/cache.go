// Package cache holds derived per-day values such as the latest profile
// features and tomorrow's suggestions. Entries live until the end of the
// calendar day they were computed on.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/6are8/Plan-Smart/internal/config"
)

// Cache is a byte-oriented key/value store with per-key expiry.
type Cache interface {
	// Get returns the value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// UntilEndOfDay returns the time left until midnight following now, in now's location.
func UntilEndOfDay(now time.Time) time.Duration {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return midnight.Sub(now)
}

// GetJSON decodes a cached JSON value into T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var zero T
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, fmt.Errorf("failed to decode cached value for %s: %w", key, err)
	}
	return v, true, nil
}

// SetJSON encodes v as JSON and stores it until the end of now's day.
func SetJSON(ctx context.Context, c Cache, key string, v any, now time.Time) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}
	return c.Set(ctx, key, raw, UntilEndOfDay(now))
}

// New builds the cache selected by cfg.Driver.
func New(ctx context.Context, cfg config.CacheConfig, log *slog.Logger) (Cache, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(ctx, cfg, log)
	case "memory", "":
		return NewMemory(nil), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
