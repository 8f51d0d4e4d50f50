package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Backend.
//
// It gives no cross-process consistency; use it for development and tests.
type MemoryStore struct {
	mu         sync.Mutex
	now        Clock
	defaultTTL time.Duration
	records    map[string]record
	counters   map[string]window
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the time source.
func WithMemoryClock(c Clock) MemoryOption {
	return func(s *MemoryStore) {
		if c != nil {
			s.now = c
		}
	}
}

// NewMemoryStore returns an empty store whose new records live for defaultTTL.
func NewMemoryStore(defaultTTL time.Duration, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		now:        systemClock,
		defaultTTL: defaultTTL,
		records:    make(map[string]record),
		counters:   make(map[string]window),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, sessionID, field, value string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("session.memory.Set", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[sessionID]
	if !ok || !rec.live(now) {
		rec = record{Fields: make(map[string]string), ExpiresAt: now.Add(s.defaultTTL)}
	}
	rec.Fields[field] = value
	s.records[sessionID] = rec
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, sessionID, field string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, unavailable("session.memory.Get", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[sessionID]
	if !ok {
		return "", false, nil
	}
	if !rec.live(s.now()) {
		delete(s.records, sessionID)
		return "", false, nil
	}
	v, ok := rec.Fields[field]
	return v, ok, nil
}

// Renew implements Store.
func (s *MemoryStore) Renew(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return unavailable("session.memory.Renew", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[sessionID]
	if !ok || !rec.live(now) {
		delete(s.records, sessionID)
		return ErrSessionNotFound
	}
	rec.ExpiresAt = now.Add(ttl)
	s.records[sessionID] = rec
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("session.memory.Clear", err)
	}

	s.mu.Lock()
	delete(s.records, sessionID)
	s.mu.Unlock()
	return nil
}

// Incr implements Counter.
func (s *MemoryStore) Incr(ctx context.Context, key string, span time.Duration) (int64, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, unavailable("session.memory.Incr", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.counters[key].advance(s.now(), span)
	s.counters[key] = w
	return w.Count, w.resetAt(), nil
}

// Purge implements Backend.
func (s *MemoryStore) Purge(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("session.memory.Purge", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for id, rec := range s.records {
		if !rec.live(now) {
			delete(s.records, id)
			n++
		}
	}
	for key, w := range s.counters {
		if !now.Before(w.resetAt()) {
			delete(s.counters, key)
			n++
		}
	}
	return n, nil
}

// Close implements Backend.
func (s *MemoryStore) Close() error { return nil }
