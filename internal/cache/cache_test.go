package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6are8/Plan-Smart/internal/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestUntilEndOfDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		now  time.Time
		want time.Duration
	}{
		{time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), 24 * time.Hour},
		{time.Date(2024, 6, 3, 18, 30, 0, 0, time.UTC), 5*time.Hour + 30*time.Minute},
		{time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UntilEndOfDay(tt.now), tt.now.String())
	}
}

func TestMemoryExpiresAtMidnight(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 6, 3, 22, 0, 0, 0, time.UTC)}
	c := NewMemory(clock.Now)

	require.NoError(t, SetJSON(ctx, c, "k", []string{"a", "b"}, clock.Now()))

	got, ok, err := GetJSON[[]string](ctx, c, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	clock.Advance(time.Hour + 59*time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "still the same day")

	clock.Advance(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "expired at midnight")
}

func TestMemoryDeleteAndCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory(nil)

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, time.Hour))
	value[0] = 'x'

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "zero", []byte("v"), 0))
	_, ok, _ = c.Get(ctx, "zero")
	assert.False(t, ok, "non-positive ttl is not stored")
}

func TestGetJSONBadPayload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory(nil)
	require.NoError(t, c.Set(ctx, "k", []byte("not json"), time.Hour))

	_, ok, err := GetJSON[map[string]any](ctx, c, "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewSelectsDriver(t *testing.T) {
	t.Parallel()

	c, err := New(context.Background(), config.CacheConfig{Driver: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New(context.Background(), config.CacheConfig{Driver: "memcached"}, nil)
	assert.Error(t, err)

	_, err = New(context.Background(), config.CacheConfig{Driver: "redis"}, nil)
	assert.Error(t, err, "redis needs an address")
}
