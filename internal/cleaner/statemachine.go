// File: internal/cleaner/statemachine.go
package cleaner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/browser"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/locator"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/pacing"
)

// Result classifies the terminal outcome of a deletion attempt.
type Result int

const (
	ResultDeleted Result = iota
	ResultSkipped
	ResultErrored
)

func (r Result) String() string {
	switch r {
	case ResultDeleted:
		return "deleted"
	case ResultSkipped:
		return "skipped"
	case ResultErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Outcome is the terminal state of one attempt. Reason is set for skips and
// errors.
type Outcome struct {
	Result Result
	Reason string
}

// stepTimeout bounds each strategy chain lookup inside an attempt.
const stepTimeout = 5 * time.Second

// StateMachine walks a single item through the menu, delete, and confirm
// steps. A missing control is a skip; an engine failure is an error; in
// simulation mode no page element is ever clicked.
type StateMachine struct {
	engine   browser.Engine
	locator  *locator.Locator
	table    locator.Table
	pacing   *pacing.Controller
	minDelay time.Duration
	maxDelay time.Duration
	simulate bool
	logger   *zap.Logger
}

// NewStateMachine builds a machine using the action delay bounds between
// intra-item steps.
func NewStateMachine(engine browser.Engine, loc *locator.Locator, table locator.Table, pc *pacing.Controller, minDelay, maxDelay time.Duration, simulate bool, logger *zap.Logger) *StateMachine {
	return &StateMachine{
		engine:   engine,
		locator:  loc,
		table:    table,
		pacing:   pc,
		minDelay: minDelay,
		maxDelay: maxDelay,
		simulate: simulate,
		logger:   logger.Named("deleter"),
	}
}

// Run attempts to delete item. Cancellation surfaces as an errored outcome;
// the orchestrator notices the dead context before the next item.
func (m *StateMachine) Run(ctx context.Context, item Item) Outcome {
	log := m.logger.With(
		zap.String("item", item.Identity),
		zap.String("timestamp", item.TimestampLabel),
	)

	if m.simulate {
		log.Info("SIMULATE: would open options menu, select delete, and confirm",
			zap.String("text", item.DisplayText),
		)
		return Outcome{Result: ResultDeleted}
	}

	// Bring the item into view first. Failure here is not fatal; clicks on
	// off-screen nodes still usually land.
	if err := m.engine.ScrollIntoView(ctx, item.Handle); err != nil {
		log.Debug("Scroll into view failed", zap.Error(err))
	}

	// Located -> MenuOpen
	menu, found, err := m.locator.Locate(ctx, locator.TargetOptionsMenu, item.Handle, m.table.Strategies(locator.TargetOptionsMenu), stepTimeout)
	if err != nil {
		return m.errored(log, "options menu lookup", err)
	}
	if !found {
		log.Warn("Options menu not found, skipping item")
		return Outcome{Result: ResultSkipped, Reason: "menu not found"}
	}
	if err := m.engine.Click(ctx, menu.Handle); err != nil {
		return m.errored(log, "options menu click", err)
	}
	if err := m.pacing.Delay(ctx, m.minDelay, m.maxDelay); err != nil {
		return m.errored(log, "pacing", err)
	}

	// MenuOpen -> DeleteOptionSelected. The menu renders in a page-level
	// overlay, so the search leaves the item scope.
	del, found, err := m.locator.Locate(ctx, locator.TargetDeleteAction, nil, m.table.Strategies(locator.TargetDeleteAction), stepTimeout)
	if err != nil {
		return m.errored(log, "delete option lookup", err)
	}
	if !found {
		log.Warn("Delete option not found, skipping item")
		return Outcome{Result: ResultSkipped, Reason: "delete option not found"}
	}
	if err := m.engine.Click(ctx, del.Handle); err != nil {
		return m.errored(log, "delete option click", err)
	}
	if err := m.pacing.Delay(ctx, m.minDelay, m.maxDelay); err != nil {
		return m.errored(log, "pacing", err)
	}

	// DeleteOptionSelected -> ConfirmPending
	confirm, found, err := m.locator.Locate(ctx, locator.TargetConfirmButton, nil, m.table.Strategies(locator.TargetConfirmButton), stepTimeout)
	if err != nil {
		return m.errored(log, "confirm button lookup", err)
	}
	if !found {
		// Some item kinds delete without a confirmation dialog. The item
		// handle going stale means the deletion already happened.
		if _, err := m.engine.Text(ctx, item.Handle); err != nil {
			log.Info("Item removed without confirmation dialog")
			return Outcome{Result: ResultDeleted}
		}
		log.Warn("Confirm control not found, skipping item")
		return Outcome{Result: ResultSkipped, Reason: "confirm control not found"}
	}
	if err := m.engine.Click(ctx, confirm.Handle); err != nil {
		return m.errored(log, "confirm click", err)
	}
	if err := m.pacing.Delay(ctx, m.minDelay, m.maxDelay); err != nil {
		return m.errored(log, "pacing", err)
	}

	log.Info("Item deleted", zap.String("text", item.DisplayText))
	return Outcome{Result: ResultDeleted}
}

func (m *StateMachine) errored(log *zap.Logger, step string, err error) Outcome {
	log.Error("Deletion attempt failed", zap.String("step", step), zap.Error(err))
	return Outcome{Result: ResultErrored, Reason: step + ": " + err.Error()}
}
