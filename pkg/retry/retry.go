// Package retry runs an operation again until it succeeds, the attempts
// are used up or the context is done.
package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const defaultDelay = 100 * time.Millisecond

// A Backoff returns the pause after the given failed attempt, counted from 1.
type Backoff func(attempt int) time.Duration

// A ShouldRetry reports whether err is worth another attempt.
type ShouldRetry func(error) bool

type RetryConfig struct {
	MaxAttempts int
	Backoff     Backoff
	ShouldRetry ShouldRetry
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.Backoff == nil {
		c.Backoff = ExponentialBackoff(defaultDelay)
	}
	if c.ShouldRetry == nil {
		c.ShouldRetry = func(error) bool { return true }
	}
	return c
}

// ExponentialBackoff doubles delay on every attempt and adds up to half of
// it as jitter.
func ExponentialBackoff(delay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		base := delay << attempt
		if half := int64(base / 2); half > 0 {
			return base + time.Duration(rand.Int64N(half)+1)
		}
		return base
	}
}

func LinearBackoff(delay time.Duration) Backoff {
	return func(int) time.Duration {
		return delay
	}
}

func Do(ctx context.Context, c RetryConfig, fn func() error) error {
	_, err := DoWithResult(ctx, c, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult returns the first successful result of fn.
//
// A non-retryable error or the error of the last attempt is returned as is.
// When ctx is done while waiting, the context error wraps the last one.
func DoWithResult[T any](
	ctx context.Context, c RetryConfig, fn func() (T, error),
) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	c = c.withDefaults()

	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if attempt >= c.MaxAttempts || !c.ShouldRetry(err) {
			return zero, err
		}

		if ctxErr := sleep(ctx, c.Backoff(attempt)); ctxErr != nil {
			return zero, fmt.Errorf("%w: %w", ctxErr, err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
