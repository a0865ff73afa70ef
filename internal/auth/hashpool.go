// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"runtime"
	"time"

	"github.com/samber/oops"
	"golang.org/x/sync/semaphore"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash validates plaintext and returns its bcrypt hash.
	Hash(ctx context.Context, plaintext string) (Password, error)

	// Compare reports whether candidate matches password.
	// Returns an error only when ctx ends before the comparison completes.
	Compare(ctx context.Context, password Password, candidate string) (bool, error)
}

// HashPool bounds concurrent bcrypt work so that hashing cannot starve the
// goroutines serving I/O. Work runs on its own goroutine; a caller whose
// context ends stops waiting, and the slot is released when the hash finishes.
type HashPool struct {
	sem     *semaphore.Weighted
	cost    int
	observe func(time.Duration)
}

// HashPoolOption configures a HashPool.
type HashPoolOption func(*HashPool)

// WithHashObserver registers fn to receive the duration of each hash or
// comparison.
func WithHashObserver(fn func(time.Duration)) HashPoolOption {
	return func(p *HashPool) {
		if fn != nil {
			p.observe = fn
		}
	}
}

// NewHashPool creates a pool running at most workers bcrypt operations at once.
// workers <= 0 selects GOMAXPROCS. cost <= 0 selects DefaultBcryptCost.
func NewHashPool(workers, cost int, opts ...HashPoolOption) *HashPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	p := &HashPool{
		sem:     semaphore.NewWeighted(int64(workers)),
		cost:    cost,
		observe: func(time.Duration) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cost returns the bcrypt work factor new hashes are generated with.
func (p *HashPool) Cost() int {
	return p.cost
}

// Hash validates plaintext and hashes it on the pool.
func (p *HashPool) Hash(ctx context.Context, plaintext string) (Password, error) {
	if verr := ValidatePassword(plaintext); verr != nil {
		return Password{}, verr
	}
	var (
		pw      Password
		hashErr error
	)
	if err := p.run(ctx, func() { pw, hashErr = NewPassword(plaintext, p.cost) }); err != nil {
		return Password{}, err
	}
	return pw, hashErr
}

// Compare checks candidate against password on the pool.
func (p *HashPool) Compare(ctx context.Context, password Password, candidate string) (bool, error) {
	var ok bool
	if err := p.run(ctx, func() { ok = password.Matches(candidate) }); err != nil {
		return false, err
	}
	return ok, nil
}

func (p *HashPool) run(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return oops.Code("AUTH_HASH_CANCELLED").With("stage", "acquire").Wrap(err)
	}
	done := make(chan struct{})
	go func() {
		defer p.sem.Release(1)
		defer close(done)
		start := time.Now()
		fn()
		p.observe(time.Since(start))
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return oops.Code("AUTH_HASH_CANCELLED").With("stage", "wait").Wrap(ctx.Err())
	}
}

var _ PasswordHasher = (*HashPool)(nil)
