package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source shared by a backend and its test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
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

// runBackendSuite exercises the Backend contract. newBackend must return a
// fresh backend with a 20 minute default TTL driven by clock.
func runBackendSuite(t *testing.T, newBackend func(t *testing.T, clock *fakeClock) Backend) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		clock := newFakeClock()
		b := newBackend(t, clock)

		require.NoError(t, b.Set(ctx, "sess-1", "user_id", "u123"))
		v, ok, err := b.Get(ctx, "sess-1", "user_id")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "u123", v)

		_, ok, err = b.Get(ctx, "sess-1", "other")
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = b.Get(ctx, "missing", "user_id")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("fields merge", func(t *testing.T) {
		clock := newFakeClock()
		b := newBackend(t, clock)

		require.NoError(t, b.Set(ctx, "sess-2", "a", "1"))
		require.NoError(t, b.Set(ctx, "sess-2", "b", "2"))
		require.NoError(t, b.Set(ctx, "sess-2", "a", "3"))

		v, ok, err := b.Get(ctx, "sess-2", "a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "3", v)
		v, _, _ = b.Get(ctx, "sess-2", "b")
		assert.Equal(t, "2", v)
	})

	t.Run("ttl expiry and set does not extend", func(t *testing.T) {
		clock := newFakeClock()
		b := newBackend(t, clock)

		require.NoError(t, b.Set(ctx, "sess-3", "user_id", "u1"))
		clock.Advance(15 * time.Minute)
		require.NoError(t, b.Set(ctx, "sess-3", "other", "x"))
		clock.Advance(6 * time.Minute)

		_, ok, err := b.Get(ctx, "sess-3", "user_id")
		require.NoError(t, err)
		assert.False(t, ok, "record must expire 20m after creation")

		// An expired record is recreated without the old fields.
		require.NoError(t, b.Set(ctx, "sess-3", "other", "y"))
		_, ok, _ = b.Get(ctx, "sess-3", "user_id")
		assert.False(t, ok)
	})

	t.Run("renew re-arms ttl", func(t *testing.T) {
		clock := newFakeClock()
		b := newBackend(t, clock)

		require.NoError(t, b.Set(ctx, "sess-4", "user_id", "u1"))
		clock.Advance(19 * time.Minute)
		require.NoError(t, b.Renew(ctx, "sess-4", 20*time.Minute))
		clock.Advance(19 * time.Minute)

		v, ok, err := b.Get(ctx, "sess-4", "user_id")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "u1", v)

		err = b.Renew(ctx, "missing", time.Minute)
		assert.True(t, errors.Is(err, ErrSessionNotFound), "got %v", err)
	})

	t.Run("clear", func(t *testing.T) {
		clock := newFakeClock()
		b := newBackend(t, clock)

		require.NoError(t, b.Set(ctx, "sess-5", "user_id", "u1"))
		require.NoError(t, b.Clear(ctx, "sess-5"))
		require.NoError(t, b.Clear(ctx, "sess-5"))

		_, ok, err := b.Get(ctx, "sess-5", "user_id")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("incr fixed window", func(t *testing.T) {
		clock := newFakeClock()
		b := newBackend(t, clock)
		start := clock.Now()

		for i := int64(1); i <= 3; i++ {
			n, reset, err := b.Incr(ctx, "k", 30*time.Second)
			require.NoError(t, err)
			assert.Equal(t, i, n)
			assert.True(t, reset.Equal(start.Add(30*time.Second)), "reset=%v", reset)
			clock.Advance(5 * time.Second)
		}

		n, _, err := b.Incr(ctx, "other", 30*time.Second)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		clock.Advance(30 * time.Second)
		n, reset, err := b.Incr(ctx, "k", 30*time.Second)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.True(t, reset.Equal(clock.Now().Add(30*time.Second)))
	})

	t.Run("purge", func(t *testing.T) {
		clock := newFakeClock()
		b := newBackend(t, clock)

		require.NoError(t, b.Set(ctx, "old", "user_id", "u1"))
		_, _, err := b.Incr(ctx, "old-key", 30*time.Second)
		require.NoError(t, err)

		clock.Advance(21 * time.Minute)
		require.NoError(t, b.Set(ctx, "fresh", "user_id", "u2"))

		n, err := b.Purge(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		v, ok, err := b.Get(ctx, "fresh", "user_id")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "u2", v)
	})
}
