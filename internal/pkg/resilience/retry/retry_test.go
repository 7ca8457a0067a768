package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrier_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil on first success", func(t *testing.T) {
		var calls int
		err := New().Execute(ctx, func() error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until the operation succeeds", func(t *testing.T) {
		var calls int
		policy := New(WithAttempts(5), WithDelay(time.Millisecond), WithMaxDelay(2*time.Millisecond))

		err := policy.Execute(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns the last error once attempts run out", func(t *testing.T) {
		var calls int
		policy := New(WithAttempts(3), WithDelay(time.Millisecond), WithMaxDelay(2*time.Millisecond))

		lastErr := errors.New("attempt 3 failed")
		err := policy.Execute(ctx, func() error {
			calls++
			if calls == 3 {
				return lastErr
			}
			return errors.New("earlier failure")
		})

		assert.ErrorIs(t, err, lastErr)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)

		var calls int
		policy := New(WithAttempts(100), WithDelay(10*time.Millisecond))

		err := policy.Execute(cancelCtx, func() error {
			calls++
			cancel()
			return errors.New("failing while ctx dies")
		})

		require.Error(t, err)
		assert.LessOrEqual(t, calls, 2)
	})
}
