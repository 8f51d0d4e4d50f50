package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Backend using PostgreSQL (shelf.sessions, shelf.rate_counters).
//
// The pgx pool is owned by the caller; Close does not close it.
type PostgresStore struct {
	pool       *pgxpool.Pool
	now        Clock
	defaultTTL time.Duration
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithPostgresClock overrides the time source used for expiry decisions.
func WithPostgresClock(c Clock) PostgresOption {
	return func(s *PostgresStore) {
		if c != nil {
			s.now = c
		}
	}
}

// NewPostgresStore creates a Postgres-backed store whose new records live for defaultTTL.
func NewPostgresStore(pool *pgxpool.Pool, defaultTTL time.Duration, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{pool: pool, now: systemClock, defaultTTL: defaultTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Set upserts one field; an expired row is replaced rather than merged.
func (s *PostgresStore) Set(ctx context.Context, sessionID, field, value string) error {
	now := s.now()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO shelf.sessions AS cur (id, fields, expires_at)
		VALUES ($1, jsonb_build_object($2::text, $3::text), $4)
		ON CONFLICT (id) DO UPDATE SET
			fields = CASE
				WHEN cur.expires_at > $5 THEN cur.fields || EXCLUDED.fields
				ELSE EXCLUDED.fields
			END,
			expires_at = CASE
				WHEN cur.expires_at > $5 THEN cur.expires_at
				ELSE EXCLUDED.expires_at
			END
	`, sessionID, field, value, now.Add(s.defaultTTL), now)
	return unavailable("session.postgres.Set", err)
}

// Get reads one field of a live record.
func (s *PostgresStore) Get(ctx context.Context, sessionID, field string) (string, bool, error) {
	var v *string
	err := s.pool.QueryRow(ctx, `
		SELECT fields ->> $2
		FROM shelf.sessions
		WHERE id = $1 AND expires_at > $3
	`, sessionID, field, s.now()).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("session.postgres.Get", err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// Renew moves expires_at to now+ttl for a live record.
func (s *PostgresStore) Renew(ctx context.Context, sessionID string, ttl time.Duration) error {
	now := s.now()
	tag, err := s.pool.Exec(ctx, `
		UPDATE shelf.sessions
		SET expires_at = $2
		WHERE id = $1 AND expires_at > $3
	`, sessionID, now.Add(ttl), now)
	if err != nil {
		return unavailable("session.postgres.Renew", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Clear deletes the record (idempotent).
func (s *PostgresStore) Clear(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM shelf.sessions WHERE id = $1`, sessionID)
	return unavailable("session.postgres.Clear", err)
}

// Incr increments key in a single upsert; the row lock serializes concurrent callers.
func (s *PostgresStore) Incr(ctx context.Context, key string, span time.Duration) (int64, time.Time, error) {
	now := s.now()
	var (
		count int64
		start time.Time
	)
	err := s.pool.QueryRow(ctx, `
		INSERT INTO shelf.rate_counters AS cur (key, window_start, count, expires_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE
				WHEN cur.expires_at > $2 THEN cur.count + 1
				ELSE 1
			END,
			window_start = CASE
				WHEN cur.expires_at > $2 THEN cur.window_start
				ELSE EXCLUDED.window_start
			END,
			expires_at = CASE
				WHEN cur.expires_at > $2 THEN cur.expires_at
				ELSE EXCLUDED.expires_at
			END
		RETURNING count, window_start
	`, key, now, now.Add(span)).Scan(&count, &start)
	if err != nil {
		return 0, time.Time{}, unavailable("session.postgres.Incr", err)
	}
	return count, start.Add(span), nil
}

// Purge deletes expired sessions and elapsed counters.
func (s *PostgresStore) Purge(ctx context.Context) (int64, error) {
	now := s.now()

	sessTag, err := s.pool.Exec(ctx, `DELETE FROM shelf.sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, unavailable("session.postgres.Purge", err)
	}
	ctrTag, err := s.pool.Exec(ctx, `DELETE FROM shelf.rate_counters WHERE expires_at <= $1`, now)
	if err != nil {
		return sessTag.RowsAffected(), unavailable("session.postgres.Purge", err)
	}
	return sessTag.RowsAffected() + ctrTag.RowsAffected(), nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }
