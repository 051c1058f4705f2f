// File: internal/cleaner/orchestrator.go
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/browser"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/config"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/locator"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/pacing"
)

// ErrInterrupted reports a run cut short by cancellation after cleanup work
// had already started. The statistics returned alongside it are valid
// partial results.
var ErrInterrupted = errors.New("run interrupted")

// timestampLookupTimeout bounds the per-item timestamp read during a scan.
const timestampLookupTimeout = time.Second

// Orchestrator drives the whole run: preconditions once, then up to
// MaxSessions scan-and-delete sessions separated by cooldowns.
type Orchestrator struct {
	cfg     *config.Config
	engine  browser.Engine
	locator *locator.Locator
	table   locator.Table
	pacing  *pacing.Controller
	machine *StateMachine
	tracker *Tracker
	pre     Preconditioner
	limiter *rate.Limiter
	logger  *zap.Logger

	// OnCooldownTick, when set, receives the remaining cooldown once per
	// second so the CLI can render a countdown.
	OnCooldownTick func(remaining time.Duration)
}

// NewOrchestrator assembles an orchestrator from already-built parts. pre
// may be nil, in which case the default login flow is used.
func NewOrchestrator(cfg *config.Config, engine browser.Engine, loc *locator.Locator, table locator.Table, pc *pacing.Controller, machine *StateMachine, tracker *Tracker, pre Preconditioner, logger *zap.Logger) *Orchestrator {
	if pre == nil {
		pre = NewLoginFlow(engine, loc, table, pc, cfg, logger)
	}
	return &Orchestrator{
		cfg:     cfg,
		engine:  engine,
		locator: loc,
		table:   table,
		pacing:  pc,
		machine: machine,
		tracker: tracker,
		pre:     pre,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.Timing.MaxActionsPerMinute)/60.0), 1),
		logger:  logger.Named("orchestrator"),
	}
}

// Run executes the full cleanup. It always returns usable statistics; the
// error is nil on orderly completion, ErrInterrupted when cancelled mid-run,
// and a descriptive error when the preconditions cannot be met.
func (o *Orchestrator) Run(ctx context.Context) (RunStatistics, error) {
	stats := func() RunStatistics { return o.tracker.Snapshot() }

	// A failed precondition ends the run early with whatever statistics
	// exist; it is reported through the log and the report, not as a
	// process error.
	if err := o.pre.Login(ctx); err != nil {
		if ctx.Err() != nil {
			o.logger.Info("Cancelled before cleanup started")
		} else {
			o.logger.Error("Login failed, ending run", zap.Error(err))
		}
		return stats(), nil
	}
	if err := o.pre.OpenActivityLog(ctx); err != nil {
		if ctx.Err() != nil {
			o.logger.Info("Cancelled before cleanup started")
		} else {
			o.logger.Error("Activity log unavailable, ending run", zap.Error(err))
		}
		return stats(), nil
	}

	for session := 1; session <= o.cfg.Cleaning.MaxSessions; session++ {
		if ctx.Err() != nil {
			return stats(), ErrInterrupted
		}

		// Reloading makes the list reflect the previous session's deletions.
		// A simulated session deletes nothing, so the reload is skipped.
		if session > 1 && !o.cfg.Execution.Simulate {
			if err := o.refreshPage(ctx); err != nil {
				return stats(), ErrInterrupted
			}
		}

		o.logger.Info("Session starting",
			zap.Int("session", session),
			zap.Int("max_sessions", o.cfg.Cleaning.MaxSessions),
		)

		items, err := o.scan(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return stats(), ErrInterrupted
			}
			return stats(), fmt.Errorf("scan failed: %w", err)
		}
		items = Dedupe(items)
		o.tracker.RecordFound(len(items))

		if len(items) > o.cfg.Cleaning.PostsPerSession {
			items = items[:o.cfg.Cleaning.PostsPerSession]
		}
		o.logger.Info("Scan finished", zap.Int("session", session), zap.Int("items", len(items)))

		if err := o.deleteBatch(ctx, items); err != nil {
			return stats(), err
		}

		result := o.tracker.SessionCompleted(session)
		o.logger.Info("Session finished",
			zap.Int("session", session),
			zap.Int("attempted", result.Attempted),
			zap.Int("deleted", result.Deleted),
			zap.Int("skipped", result.Skipped),
			zap.Int("errored", result.Errored),
		)

		// A session that deleted nothing means the timeline is exhausted or
		// every remaining item is undeletable. Further sessions would just
		// repeat the same skips.
		if result.Deleted == 0 {
			o.logger.Info("No deletions this session, stopping run")
			break
		}

		if session < o.cfg.Cleaning.MaxSessions {
			if err := o.pacing.Cooldown(ctx, o.cfg.Timing.SessionDelay(), o.OnCooldownTick); err != nil {
				return stats(), ErrInterrupted
			}
		}
	}

	return stats(), nil
}

// refreshPage reloads the activity log between sessions so the item list
// reflects the previous session's deletions.
func (o *Orchestrator) refreshPage(ctx context.Context) error {
	if err := o.engine.Reload(ctx); err != nil {
		o.logger.Error("Page refresh failed", zap.Error(err))
		return err
	}
	if err := o.engine.WaitReady(ctx, o.cfg.Timing.PageTimeout()); err != nil {
		o.logger.Warn("Timeout waiting for refreshed page", zap.Error(err))
	}
	return o.pacing.Delay(ctx, 3*time.Second, 5*time.Second)
}

// scan collects the deletable items currently on the page.
func (o *Orchestrator) scan(ctx context.Context) ([]Item, error) {
	match, found, err := o.locator.LocateAll(ctx, locator.TargetItemContainer, nil, o.table.Strategies(locator.TargetItemContainer), stepTimeout)
	if err != nil {
		return nil, err
	}
	if !found {
		o.logger.Warn("No items found on page")
		return nil, nil
	}
	o.logger.Debug("Items located",
		zap.String("strategy", match.Strategy),
		zap.Int("count", len(match.Handles)),
	)

	items := make([]Item, 0, len(match.Handles))
	for _, h := range match.Handles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items = append(items, o.buildItem(ctx, h))
	}
	return items, nil
}

// buildItem assembles the scan-time record for one element. Reads are best
// effort; an unreadable item still participates with whatever was gathered.
func (o *Orchestrator) buildItem(ctx context.Context, h browser.Handle) Item {
	testID, _, _ := o.engine.Attribute(ctx, h, "data-testid")
	domID, _, _ := o.engine.Attribute(ctx, h, "id")
	text, err := o.engine.Text(ctx, h)
	if err != nil {
		o.logger.Debug("Item text unreadable", zap.String("handle", h.ID()), zap.Error(err))
	}

	item := Item{
		Identity:       Identity(testID, domID, text),
		DisplayText:    displayText(text),
		TimestampLabel: o.timestampLabel(ctx, h),
		Handle:         h,
	}
	return item
}

func (o *Orchestrator) timestampLabel(ctx context.Context, scope browser.Handle) string {
	match, found, err := o.locator.Locate(ctx, locator.TargetTimestamp, scope, o.table.Strategies(locator.TargetTimestamp), timestampLookupTimeout)
	if err != nil || !found {
		return "unknown"
	}
	if title, ok, _ := o.engine.Attribute(ctx, match.Handle, "title"); ok && title != "" {
		return title
	}
	if text, err := o.engine.Text(ctx, match.Handle); err == nil && text != "" {
		return displayText(text)
	}
	return "unknown"
}

// deleteBatch runs the state machine over items, recording every outcome as
// it lands and pacing between attempts.
func (o *Orchestrator) deleteBatch(ctx context.Context, items []Item) error {
	minDelay, maxDelay := o.cfg.Timing.DeleteDelayBounds()

	for i, item := range items {
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		if err := o.limiter.Wait(ctx); err != nil {
			return ErrInterrupted
		}

		outcome := o.machine.Run(ctx, item)
		o.tracker.RecordOutcome(outcome)
		if ctx.Err() != nil {
			return ErrInterrupted
		}

		if i < len(items)-1 {
			if err := o.pacing.Delay(ctx, minDelay, maxDelay); err != nil {
				return ErrInterrupted
			}
		}
	}
	return nil
}
