package password

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool runs hash derivations on dedicated goroutines with bounded concurrency.
//
// Argon2 allocates MemoryKiB per call; the bound keeps a login burst from
// exhausting memory and starving request handling.
type Pool struct {
	hasher *Hasher
	sem    *semaphore.Weighted
}

// NewPool returns a Pool running at most workers derivations at once.
// workers <= 0 selects runtime.NumCPU().
func NewPool(h *Hasher, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{hasher: h, sem: semaphore.NewWeighted(int64(workers))}
}

type result struct {
	hash string
	ok   bool
	err  error
}

// Hash computes Hasher.Hash off the calling goroutine.
func (p *Pool) Hash(ctx context.Context, password, salt string) (string, error) {
	res, err := p.run(ctx, func() result {
		h, err := p.hasher.Hash(password, salt)
		return result{hash: h, err: err}
	})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// Verify computes Hasher.Verify off the calling goroutine.
func (p *Pool) Verify(ctx context.Context, password, salt, encoded string) (bool, error) {
	res, err := p.run(ctx, func() result {
		ok, err := p.hasher.Verify(password, salt, encoded)
		return result{ok: ok, err: err}
	})
	if err != nil {
		return false, err
	}
	return res.ok, res.err
}

// run waits for a slot, starts fn and suspends until fn returns or ctx ends.
// A started derivation always runs to completion and releases its slot itself.
func (p *Pool) run(ctx context.Context, fn func() result) (result, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return result{}, err
	}

	done := make(chan result, 1)
	go func() {
		defer p.sem.Release(1)
		done <- fn()
	}()

	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}
