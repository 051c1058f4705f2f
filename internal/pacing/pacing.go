// File: internal/pacing/pacing.go

// Package pacing spaces browser actions out on a human-like schedule.
package pacing

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Controller draws randomized delays and runs cancellable cooldowns. Safe for
// use from a single goroutine per operation; the RNG is guarded so multiple
// goroutines may share one controller.
type Controller struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *zap.Logger
}

// NewController returns a controller seeded from the clock.
func NewController(logger *zap.Logger) *Controller {
	return newController(logger, time.Now().UnixNano())
}

// NewSeededController returns a controller with a fixed seed for
// reproducible delay sequences.
func NewSeededController(logger *zap.Logger, seed int64) *Controller {
	return newController(logger, seed)
}

func newController(logger *zap.Logger, seed int64) *Controller {
	return &Controller{
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger.Named("pacing"),
	}
}

// pick draws a duration uniformly from [min, max]. min == max yields exactly
// that value.
func (c *Controller) pick(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return min + time.Duration(c.rng.Int63n(int64(max-min)+1))
}

// Delay sleeps for a random duration in [min, max], returning early with the
// context error if ctx is cancelled.
func (c *Controller) Delay(ctx context.Context, min, max time.Duration) error {
	d := c.pick(min, max)
	if d <= 0 {
		return ctx.Err()
	}

	c.logger.Debug("Pausing", zap.Duration("duration", d))
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cooldown waits out d in one-second steps so cancellation is picked up
// promptly even across long inter-session breaks. onTick, when non-nil, is
// called once per step with the time remaining.
func (c *Controller) Cooldown(ctx context.Context, d time.Duration, onTick func(remaining time.Duration)) error {
	if d <= 0 {
		return ctx.Err()
	}

	c.logger.Info("Cooling down", zap.Duration("duration", d))
	deadline := time.Now().Add(d)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		if onTick != nil {
			onTick(remaining)
		}

		step := time.Second
		if remaining < step {
			step = remaining
		}
		timer := time.NewTimer(step)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		timer.Stop()
	}
}
