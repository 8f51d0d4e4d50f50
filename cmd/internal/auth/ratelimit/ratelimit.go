// Package ratelimit admits or rejects requests with a fixed-window counter
// kept in the shared session store.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"shelf/cmd/internal/auth/session"
)

// Decision is the outcome of Admit.
type Decision int

const (
	Allow Decision = iota
	Reject
)

func (d Decision) String() string {
	if d == Reject {
		return "reject"
	}
	return "allow"
}

// Result describes one admission.
type Result struct {
	Decision Decision
	Count    int64
	ResetAt  time.Time
}

// RetryAfter is the time left in the window at now, rounded up to a whole second.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return (d + time.Second - 1).Truncate(time.Second)
}

// Key composes the counter key from the caller's identity (empty when
// anonymous) and remote address.
func Key(identity, remote string) string {
	return identity + remote
}

// Limiter is safe for concurrent use; all state lives in the counter.
type Limiter struct {
	cfg     Config
	counter session.Counter
}

func New(cfg Config, counter session.Counter) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if counter == nil {
		return nil, fmt.Errorf("%w: nil counter", ErrConfig)
	}
	return &Limiter{cfg: cfg, counter: counter}, nil
}

// Admit counts the request against identifier's current window.
//
// The increment happens before the threshold check, so rejected requests
// consume a slot too. Counter errors are returned as-is and never turned
// into Allow.
func (l *Limiter) Admit(ctx context.Context, identifier string) (Result, error) {
	n, resetAt, err := l.counter.Incr(ctx, "rl:"+identifier, l.cfg.Window)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit admit: %w", err)
	}
	res := Result{Decision: Allow, Count: n, ResetAt: resetAt}
	if n > l.cfg.Max {
		res.Decision = Reject
	}
	return res, nil
}
