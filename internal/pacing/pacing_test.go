// File: internal/pacing/pacing_test.go
package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestPickStaysWithinBounds(t *testing.T) {
	c := NewSeededController(zaptest.NewLogger(t), 42)

	min := 10 * time.Millisecond
	max := 50 * time.Millisecond
	for i := 0; i < 1000; i++ {
		d := c.pick(min, max)
		require.GreaterOrEqual(t, d, min)
		require.LessOrEqual(t, d, max)
	}
}

func TestPickExactWhenBoundsEqual(t *testing.T) {
	c := NewSeededController(zaptest.NewLogger(t), 1)

	for i := 0; i < 100; i++ {
		assert.Equal(t, 25*time.Millisecond, c.pick(25*time.Millisecond, 25*time.Millisecond))
	}
}

func TestDelay(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("completes within bounds", func(t *testing.T) {
		c := NewSeededController(zaptest.NewLogger(t), 7)

		start := time.Now()
		err := c.Delay(context.Background(), 5*time.Millisecond, 20*time.Millisecond)
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
	})

	t.Run("zero bounds return immediately", func(t *testing.T) {
		c := NewController(zaptest.NewLogger(t))
		require.NoError(t, c.Delay(context.Background(), 0, 0))
	})

	t.Run("cancellation cuts the sleep short", func(t *testing.T) {
		c := NewController(zaptest.NewLogger(t))
		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		err := c.Delay(ctx, 10*time.Second, 10*time.Second)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), 5*time.Second)
	})
}

func TestCooldown(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("short cooldown completes and ticks", func(t *testing.T) {
		c := NewController(zaptest.NewLogger(t))

		var ticks int
		err := c.Cooldown(context.Background(), 50*time.Millisecond, func(remaining time.Duration) {
			ticks++
			assert.Positive(t, remaining)
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ticks, 1)
	})

	t.Run("zero duration is a no-op", func(t *testing.T) {
		c := NewController(zaptest.NewLogger(t))
		require.NoError(t, c.Cooldown(context.Background(), 0, nil))
	})

	t.Run("cancellation is noticed within a second", func(t *testing.T) {
		c := NewController(zaptest.NewLogger(t))
		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		err := c.Cooldown(ctx, time.Hour, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}
