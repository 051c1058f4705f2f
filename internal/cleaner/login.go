// File: internal/cleaner/login.go
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/browser"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/config"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/locator"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/pacing"
)

const (
	loginURL    = "https://www.facebook.com/login"
	profileURL  = "https://www.facebook.com/me"
	activityURL = "https://www.facebook.com/me/allactivity"

	cookieBannerTimeout = 2 * time.Second
)

// ErrTwoFactorRequired reports an account protected by a second factor,
// which the login flow cannot complete on its own.
var ErrTwoFactorRequired = errors.New("two-factor authentication required")

// Preconditioner prepares the browser for cleanup sessions: an authenticated
// account sitting on the activity log page.
type Preconditioner interface {
	Login(ctx context.Context) error
	OpenActivityLog(ctx context.Context) error
}

// LoginFlow is the production Preconditioner. In simulation mode it still
// navigates and inspects pages but never types credentials or clicks
// anything.
type LoginFlow struct {
	engine      browser.Engine
	locator     *locator.Locator
	table       locator.Table
	pacing      *pacing.Controller
	credentials config.CredentialsConfig
	pageTimeout time.Duration
	minDelay    time.Duration
	maxDelay    time.Duration
	simulate    bool
	logger      *zap.Logger
}

var _ Preconditioner = (*LoginFlow)(nil)

// NewLoginFlow wires a login flow from the run configuration.
func NewLoginFlow(engine browser.Engine, loc *locator.Locator, table locator.Table, pc *pacing.Controller, cfg *config.Config, logger *zap.Logger) *LoginFlow {
	minDelay, maxDelay := cfg.Timing.ActionDelayBounds()
	return &LoginFlow{
		engine:      engine,
		locator:     loc,
		table:       table,
		pacing:      pc,
		credentials: cfg.Credentials,
		pageTimeout: cfg.Timing.PageTimeout(),
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		simulate:    cfg.Execution.Simulate,
		logger:      logger.Named("login"),
	}
}

// Login signs the configured account in and verifies the session landed.
func (f *LoginFlow) Login(ctx context.Context) error {
	f.logger.Info("Logging in", zap.String("email", f.credentials.Email))

	if _, err := f.engine.Navigate(ctx, loginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	f.dismissCookieBanner(ctx)

	email, found, err := f.locator.Locate(ctx, locator.TargetLoginEmail, nil, f.table.Strategies(locator.TargetLoginEmail), stepTimeout)
	if err != nil {
		return fmt.Errorf("email field lookup failed: %w", err)
	}
	if !found {
		return errors.New("login form not found on page")
	}
	password, found, err := f.locator.Locate(ctx, locator.TargetLoginPassword, nil, f.table.Strategies(locator.TargetLoginPassword), stepTimeout)
	if err != nil {
		return fmt.Errorf("password field lookup failed: %w", err)
	}
	if !found {
		return errors.New("password field not found on page")
	}
	submit, found, err := f.locator.Locate(ctx, locator.TargetLoginSubmit, nil, f.table.Strategies(locator.TargetLoginSubmit), stepTimeout)
	if err != nil {
		return fmt.Errorf("login button lookup failed: %w", err)
	}
	if !found {
		return errors.New("login button not found on page")
	}

	if f.simulate {
		f.logger.Info("SIMULATE: would enter credentials and submit the login form")
		return nil
	}

	if err := f.engine.TypeKeys(ctx, email.Handle, f.credentials.Email); err != nil {
		return fmt.Errorf("failed to enter email: %w", err)
	}
	if err := f.pacing.Delay(ctx, f.minDelay, f.maxDelay); err != nil {
		return err
	}
	if err := f.engine.TypeKeys(ctx, password.Handle, f.credentials.Password); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}
	if err := f.pacing.Delay(ctx, f.minDelay, f.maxDelay); err != nil {
		return err
	}
	if err := f.engine.Click(ctx, submit.Handle); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}

	return f.verifyLogin(ctx)
}

// verifyLogin waits for a logged-in marker, then triages the failure modes.
func (f *LoginFlow) verifyLogin(ctx context.Context) error {
	_, found, err := f.locator.Locate(ctx, locator.TargetLoggedInMarker, nil, f.table.Strategies(locator.TargetLoggedInMarker), f.pageTimeout)
	if err != nil {
		return fmt.Errorf("login verification failed: %w", err)
	}
	if found {
		f.logger.Info("Login completed")
		return nil
	}

	if errBox, found, _ := f.locator.Locate(ctx, locator.TargetLoginError, nil, f.table.Strategies(locator.TargetLoginError), stepTimeout); found {
		msg, _ := f.engine.Text(ctx, errBox.Handle)
		return fmt.Errorf("login rejected: %s", strings.TrimSpace(msg))
	}
	if _, found, _ := f.locator.Locate(ctx, locator.TargetTwoFactorPrompt, nil, f.table.Strategies(locator.TargetTwoFactorPrompt), stepTimeout); found {
		return ErrTwoFactorRequired
	}
	return errors.New("login could not be verified before the page timeout")
}

// dismissCookieBanner accepts the consent dialog when one shows up. Absence
// is the common case and not worth more than a debug line.
func (f *LoginFlow) dismissCookieBanner(ctx context.Context) {
	banner, found, err := f.locator.Locate(ctx, locator.TargetCookieBanner, nil, f.table.Strategies(locator.TargetCookieBanner), cookieBannerTimeout)
	if err != nil || !found {
		f.logger.Debug("No cookie banner found")
		return
	}

	if f.simulate {
		f.logger.Info("SIMULATE: would accept the cookie banner")
		return
	}
	if err := f.engine.Click(ctx, banner.Handle); err != nil {
		f.logger.Debug("Cookie banner click failed", zap.Error(err))
		return
	}
	_ = f.pacing.Delay(ctx, f.minDelay, f.maxDelay)
}

// OpenActivityLog lands the browser on the activity log, trying the direct
// URL first and falling back to the profile page link.
func (f *LoginFlow) OpenActivityLog(ctx context.Context) error {
	f.logger.Info("Opening activity log")

	landed, err := f.engine.Navigate(ctx, activityURL)
	if err != nil {
		return fmt.Errorf("failed to open activity log: %w", err)
	}
	if onActivityPage(landed) {
		return nil
	}

	f.logger.Debug("Direct activity URL redirected, trying the profile link", zap.String("landed", landed))
	if _, err := f.engine.Navigate(ctx, profileURL); err != nil {
		return fmt.Errorf("failed to open profile page: %w", err)
	}

	link, found, err := f.locator.Locate(ctx, locator.TargetActivityLink, nil, f.table.Strategies(locator.TargetActivityLink), stepTimeout)
	if err != nil {
		return fmt.Errorf("activity link lookup failed: %w", err)
	}
	if !found {
		return errors.New("activity log link not found on profile page")
	}
	if err := f.engine.Click(ctx, link.Handle); err != nil {
		return fmt.Errorf("activity link click failed: %w", err)
	}
	if err := f.engine.WaitReady(ctx, f.pageTimeout); err != nil {
		f.logger.Warn("Timeout waiting for activity log", zap.Error(err))
	}

	current, err := f.engine.CurrentURL(ctx)
	if err != nil {
		return fmt.Errorf("failed to read current page: %w", err)
	}
	if !onActivityPage(current) {
		return fmt.Errorf("could not reach the activity log, stuck at %s", current)
	}
	return nil
}

func onActivityPage(url string) bool {
	return strings.Contains(url, "allactivity") || strings.Contains(url, "activity")
}
