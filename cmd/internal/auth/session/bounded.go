package session

import (
	"context"
	"time"
)

// Bounded decorates a Backend with a per-call deadline.
//
// A call that exceeds the deadline reports *UnavailableError wrapping
// context.DeadlineExceeded, so callers see "store unavailable" rather than a
// silent allow or an anonymous identity.
func Bounded(b Backend, timeout time.Duration) Backend {
	if timeout <= 0 {
		return b
	}
	return &bounded{next: b, timeout: timeout}
}

type bounded struct {
	next    Backend
	timeout time.Duration
}

func (b *bounded) Set(ctx context.Context, sessionID, field, value string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.check(ctx, "session.Set", b.next.Set(ctx, sessionID, field, value))
}

func (b *bounded) Get(ctx context.Context, sessionID, field string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	v, ok, err := b.next.Get(ctx, sessionID, field)
	if err = b.check(ctx, "session.Get", err); err != nil {
		return "", false, err
	}
	return v, ok, nil
}

func (b *bounded) Renew(ctx context.Context, sessionID string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.check(ctx, "session.Renew", b.next.Renew(ctx, sessionID, ttl))
}

func (b *bounded) Clear(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.check(ctx, "session.Clear", b.next.Clear(ctx, sessionID))
}

func (b *bounded) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	n, reset, err := b.next.Incr(ctx, key, window)
	if err = b.check(ctx, "session.Incr", err); err != nil {
		return 0, time.Time{}, err
	}
	return n, reset, nil
}

func (b *bounded) Purge(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	n, err := b.next.Purge(ctx)
	return n, b.check(ctx, "session.Purge", err)
}

func (b *bounded) Close() error { return b.next.Close() }

// check reports a deadline hit during the call even if the backend returned nil.
func (b *bounded) check(ctx context.Context, op string, err error) error {
	if err != nil {
		return unavailable(op, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return unavailable(op, ctxErr)
	}
	return nil
}
