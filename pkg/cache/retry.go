package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a cache backend cannot be reached.
var ErrUnavailable = errors.New("cache unavailable")

// backoff describes how a backend connection is retried: up to attempts
// calls, waiting delay before the second and doubling the wait after that.
type backoff struct {
	attempts int
	delay    time.Duration
}

// connectBackoff is used when opening a remote backend.
var connectBackoff = backoff{attempts: 3, delay: time.Second}

// retry calls fn until it succeeds, fails permanently or runs out of
// attempts, and returns the last error. A nil permanent treats every
// error as transient.
func (b backoff) retry(ctx context.Context, permanent func(error) bool, fn func(context.Context) error) error {
	delay := b.delay
	var err error
	for i := 0; i < b.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if permanent != nil && permanent(err) {
			return err
		}
	}
	return err
}
