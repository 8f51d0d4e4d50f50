package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const (
	sessionsBucket = "sessions"
	countersBucket = "rate_counters"
)

// BoltStore implements Backend on a bbolt file.
//
// bbolt serializes write transactions, which gives per-key atomicity for every
// read-modify-write below. The file lock restricts it to one process.
type BoltStore struct {
	db         *bbolt.DB
	now        Clock
	defaultTTL time.Duration
}

// BoltOption configures a BoltStore.
type BoltOption func(*BoltStore)

// WithBoltClock overrides the time source.
func WithBoltClock(c Clock) BoltOption {
	return func(s *BoltStore) {
		if c != nil {
			s.now = c
		}
	}
}

// OpenBoltStore opens (or creates) the database at path.
func OpenBoltStore(path string, defaultTTL time.Duration, opts ...BoltOption) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: bolt path is required", ErrConfig)
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, unavailable("session.bolt.Open", err)
	}

	s := &BoltStore{db: db, now: systemClock, defaultTTL: defaultTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{sessionsBucket, countersBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// Set implements Store.
func (s *BoltStore) Set(ctx context.Context, sessionID, field, value string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("session.bolt.Set", err)
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sessionsBucket))
		now := s.now()

		rec, ok, err := loadRecord(b, sessionID)
		if err != nil {
			return err
		}
		if !ok || !rec.live(now) {
			rec = record{Fields: make(map[string]string), ExpiresAt: now.Add(s.defaultTTL)}
		}
		rec.Fields[field] = value
		return putJSON(b, sessionID, rec)
	})
	return unavailable("session.bolt.Set", err)
}

// Get implements Store.
func (s *BoltStore) Get(ctx context.Context, sessionID, field string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, unavailable("session.bolt.Get", err)
	}

	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		rec, ok, err := loadRecord(tx.Bucket([]byte(sessionsBucket)), sessionID)
		if err != nil || !ok || !rec.live(s.now()) {
			return err
		}
		value, found = rec.Fields[field]
		return nil
	})
	if err != nil {
		return "", false, unavailable("session.bolt.Get", err)
	}
	return value, found, nil
}

// Renew implements Store.
func (s *BoltStore) Renew(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return unavailable("session.bolt.Renew", err)
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sessionsBucket))
		now := s.now()

		rec, ok, err := loadRecord(b, sessionID)
		if err != nil {
			return err
		}
		if !ok || !rec.live(now) {
			return ErrSessionNotFound
		}
		rec.ExpiresAt = now.Add(ttl)
		return putJSON(b, sessionID, rec)
	})
	return unavailable("session.bolt.Renew", err)
}

// Clear implements Store.
func (s *BoltStore) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("session.bolt.Clear", err)
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionsBucket)).Delete([]byte(sessionID))
	})
	return unavailable("session.bolt.Clear", err)
}

// Incr implements Counter.
func (s *BoltStore) Incr(ctx context.Context, key string, span time.Duration) (int64, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, unavailable("session.bolt.Incr", err)
	}

	var w window
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(countersBucket))

		var cur window
		if raw := b.Get([]byte(key)); raw != nil {
			if err := json.Unmarshal(raw, &cur); err != nil {
				return fmt.Errorf("unmarshal counter: %w", err)
			}
		}
		w = cur.advance(s.now(), span)
		return putJSON(b, key, w)
	})
	if err != nil {
		return 0, time.Time{}, unavailable("session.bolt.Incr", err)
	}
	return w.Count, w.resetAt(), nil
}

// Purge implements Backend.
func (s *BoltStore) Purge(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("session.bolt.Purge", err)
	}

	var n int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		now := s.now()

		sessions := tx.Bucket([]byte(sessionsBucket))
		var stale [][]byte
		err := sessions.ForEach(func(k, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil || !rec.live(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := sessions.Delete(k); err != nil {
				return err
			}
			n++
		}

		counters := tx.Bucket([]byte(countersBucket))
		stale = stale[:0]
		err = counters.ForEach(func(k, v []byte) error {
			var w window
			if err := json.Unmarshal(v, &w); err != nil || !now.Before(w.resetAt()) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := counters.Delete(k); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, unavailable("session.bolt.Purge", err)
	}
	return n, nil
}

// Close closes the underlying database file.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func loadRecord(b *bbolt.Bucket, id string) (record, bool, error) {
	if b == nil {
		return record{}, false, errors.New("sessions bucket is missing")
	}
	raw := b.Get([]byte(id))
	if raw == nil {
		return record{}, false, nil
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return record{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	if rec.Fields == nil {
		rec.Fields = make(map[string]string)
	}
	return rec, true, nil
}

func putJSON(b *bbolt.Bucket, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return b.Put([]byte(key), payload)
}
