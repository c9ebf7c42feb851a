package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/catalog-imgcheck/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTemporary = errors.New("temporary")

func TestDo(t *testing.T) {
	t.Run("FirstAttempt", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), retry.RetryConfig{MaxAttempts: 3}, func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		var calls int
		cfg := retry.RetryConfig{
			MaxAttempts: 3,
			Backoff:     retry.LinearBackoff(time.Millisecond),
		}
		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			if calls < 3 {
				return errTemporary
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("AttemptsExhausted", func(t *testing.T) {
		var calls int
		cfg := retry.RetryConfig{
			MaxAttempts: 2,
			Backoff:     retry.LinearBackoff(time.Millisecond),
		}
		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			return errTemporary
		})
		require.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 2, calls)
	})

	t.Run("NonRetryable", func(t *testing.T) {
		permanent := errors.New("permanent")
		var calls int
		cfg := retry.RetryConfig{
			MaxAttempts: 5,
			Backoff:     retry.LinearBackoff(time.Millisecond),
			ShouldRetry: func(err error) bool { return !errors.Is(err, permanent) },
		}
		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			return permanent
		})
		require.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("CanceledBeforeStart", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err := retry.Do(ctx, retry.RetryConfig{}, func() error {
			t.Fatal("must not be called")
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("CanceledWhileWaiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cfg := retry.RetryConfig{
			MaxAttempts: 3,
			Backoff:     retry.LinearBackoff(time.Hour),
		}
		err := retry.Do(ctx, cfg, func() error {
			cancel()
			return errTemporary
		})
		require.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, errTemporary)
	})
}

func TestDoWithResult(t *testing.T) {
	var calls int
	cfg := retry.RetryConfig{
		MaxAttempts: 2,
		Backoff:     retry.LinearBackoff(time.Millisecond),
	}
	v, err := retry.DoWithResult(t.Context(), cfg, func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errTemporary
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestExponentialBackoff(t *testing.T) {
	b := retry.ExponentialBackoff(10 * time.Millisecond)
	for attempt := 1; attempt <= 4; attempt++ {
		base := time.Duration(1<<attempt) * 10 * time.Millisecond
		d := b(attempt)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}
}
