// File: internal/locator/locator.go

// Package locator resolves page elements through ordered lists of candidate
// selectors. Site markup shifts between rollouts, locales, and A/B buckets,
// so every lookup is a fallback chain rather than a single selector.
package locator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/browser"
)

// Target names a page element role independently of how it is matched.
type Target string

const (
	TargetItemContainer Target = "item_container"
	TargetOptionsMenu   Target = "options_menu"
	TargetDeleteAction  Target = "delete_action"
	TargetConfirmButton Target = "confirm_button"
	TargetTimestamp     Target = "timestamp"

	TargetLoginEmail      Target = "login_email"
	TargetLoginPassword   Target = "login_password"
	TargetLoginSubmit     Target = "login_submit"
	TargetLoggedInMarker  Target = "logged_in_marker"
	TargetLoginError      Target = "login_error"
	TargetTwoFactorPrompt Target = "two_factor_prompt"
	TargetCookieBanner    Target = "cookie_banner"
	TargetActivityLink    Target = "activity_link"
)

// MatchStrategy is one candidate way to find a target. Strategies are tried
// in order; the first one yielding a match wins.
type MatchStrategy struct {
	Name     string
	Selector browser.Selector
}

// Table maps each target to its ordered strategy list.
type Table map[Target][]MatchStrategy

// Match is a resolved element together with the strategy that found it.
type Match struct {
	Handle   browser.Handle
	Strategy string
}

// Locator runs strategy chains against an engine.
type Locator struct {
	engine browser.Engine
	logger *zap.Logger
}

// New returns a locator bound to engine.
func New(engine browser.Engine, logger *zap.Logger) *Locator {
	return &Locator{
		engine: engine,
		logger: logger.Named("locator"),
	}
}

// Locate resolves target to a single element, scoped to scope when non-nil.
// Exhausting every strategy is reported through found=false, not an error;
// err is reserved for engine failures and context cancellation.
func (l *Locator) Locate(ctx context.Context, target Target, scope browser.Handle, strategies []MatchStrategy, perStrategyTimeout time.Duration) (Match, bool, error) {
	matches, found, err := l.locate(ctx, target, scope, strategies, perStrategyTimeout, false)
	if err != nil || !found {
		return Match{}, false, err
	}
	return Match{Handle: matches.Handles[0], Strategy: matches.Strategy}, true, nil
}

// MultiMatch is the result of LocateAll: every handle the winning strategy
// produced, in document order.
type MultiMatch struct {
	Handles  []browser.Handle
	Strategy string
}

// LocateAll resolves target to every element the first productive strategy
// matches. Semantics otherwise follow Locate.
func (l *Locator) LocateAll(ctx context.Context, target Target, scope browser.Handle, strategies []MatchStrategy, perStrategyTimeout time.Duration) (MultiMatch, bool, error) {
	return l.locate(ctx, target, scope, strategies, perStrategyTimeout, true)
}

func (l *Locator) locate(ctx context.Context, target Target, scope browser.Handle, strategies []MatchStrategy, perStrategyTimeout time.Duration, all bool) (MultiMatch, bool, error) {
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return MultiMatch{}, false, err
		}

		handles, err := l.engine.Query(ctx, scope, s.Selector, perStrategyTimeout)
		if err != nil {
			return MultiMatch{}, false, err
		}
		if len(handles) == 0 {
			continue
		}

		l.logger.Debug("Strategy matched",
			zap.String("target", string(target)),
			zap.String("strategy", s.Name),
			zap.Int("matches", len(handles)),
		)
		if !all {
			handles = handles[:1]
		}
		return MultiMatch{Handles: handles, Strategy: s.Name}, true, nil
	}

	l.logger.Debug("No strategy matched", zap.String("target", string(target)), zap.Int("strategies", len(strategies)))
	return MultiMatch{}, false, nil
}
