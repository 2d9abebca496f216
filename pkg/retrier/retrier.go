// Package retrier provides exponential backoff with jitter for remote venue calls.
package retrier

import (
	"context"
	"math/rand"
	"time"
)

// Retrier retries a failing call with exponentially growing pauses.
type Retrier struct {
	attempts int
	base     time.Duration
	max      time.Duration
	jitter   float64
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithAttempts sets how many times the call is retried after the first failure.
func WithAttempts(n int) Option {
	return func(r *Retrier) { r.attempts = n }
}

// WithBaseInterval sets the pause before the first retry.
func WithBaseInterval(d time.Duration) Option {
	return func(r *Retrier) { r.base = d }
}

// WithMaxInterval caps the pause between retries.
func WithMaxInterval(d time.Duration) Option {
	return func(r *Retrier) { r.max = d }
}

// New creates a Retrier with sane defaults for rate-limited exchange APIs.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		attempts: 3,
		base:     time.Second,
		max:      15 * time.Second,
		jitter:   0.2,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do runs fn until it succeeds, the retries are exhausted, or ctx is done.
// The last error is returned.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	pause := r.base

	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= r.attempts {
			return err
		}

		sleep := pause + time.Duration((rand.Float64()*2-1)*r.jitter*float64(pause))
		if sleep < 0 {
			sleep = 0
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		pause *= 2
		if pause > r.max {
			pause = r.max
		}
	}
}

// DoWithData is Do for calls that return a value alongside the error.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
