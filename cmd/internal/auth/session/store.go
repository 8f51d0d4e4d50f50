package session

import (
	"context"
	"time"
)

// Store holds SessionRecords: string fields under a session id, expiring by TTL.
// Operations are atomic per session id.
type Store interface {
	// Set writes one field. A missing or expired record is created with the
	// store's default TTL; an existing record keeps its expiry.
	Set(ctx context.Context, sessionID, field, value string) error

	// Get reads one field; ok is false when the record or field is absent.
	Get(ctx context.Context, sessionID, field string) (value string, ok bool, err error)

	// Renew re-arms the record's TTL. Returns ErrSessionNotFound if absent.
	Renew(ctx context.Context, sessionID string, ttl time.Duration) error

	// Clear deletes the record. Clearing an absent record is not an error.
	Clear(ctx context.Context, sessionID string) error
}

// Counter is a shared fixed-window counter.
type Counter interface {
	// Incr atomically increments key within the current window and returns
	// the post-increment count and the instant the window ends. A window
	// starts at the first increment after the previous one elapsed.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Backend is a Store and Counter sharing one persistence layer.
type Backend interface {
	Store
	Counter

	// Purge removes expired records and elapsed counters, returning how many were removed.
	Purge(ctx context.Context) (int64, error)

	Close() error
}

// record is the persisted form of a SessionRecord.
type record struct {
	Fields    map[string]string `json:"fields"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func (r record) live(now time.Time) bool { return now.Before(r.ExpiresAt) }

// window is the persisted form of a RateWindowCounter.
type window struct {
	Start time.Time `json:"window_start"`
	Count int64     `json:"count"`
	Span  int64     `json:"span_ms"`
}

func (w window) resetAt() time.Time { return w.Start.Add(time.Duration(w.Span) * time.Millisecond) }

// advance applies one increment at now and returns the updated window.
func (w window) advance(now time.Time, span time.Duration) window {
	if w.Count == 0 || !now.Before(w.resetAt()) {
		return window{Start: now, Count: 1, Span: span.Milliseconds()}
	}
	w.Count++
	return w
}

// Clock returns the current time. Backends accept one for tests.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
