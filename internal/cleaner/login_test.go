// File: internal/cleaner/login_test.go
package cleaner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/browser"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/browser/enginetest"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/cleaner"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/config"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/locator"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/pacing"
)

func loginTable() locator.Table {
	return locator.Table{
		locator.TargetLoginEmail:      {{Name: "email", Selector: browser.CSS("email")}},
		locator.TargetLoginPassword:   {{Name: "password", Selector: browser.CSS("password")}},
		locator.TargetLoginSubmit:     {{Name: "submit", Selector: browser.CSS("submit")}},
		locator.TargetLoggedInMarker:  {{Name: "marker", Selector: browser.CSS("marker")}},
		locator.TargetLoginError:      {{Name: "login-error", Selector: browser.CSS("login-error")}},
		locator.TargetTwoFactorPrompt: {{Name: "2fa", Selector: browser.CSS("2fa")}},
		locator.TargetCookieBanner:    {{Name: "cookies", Selector: browser.CSS("cookies")}},
		locator.TargetActivityLink:    {{Name: "activity", Selector: browser.CSS("activity")}},
	}
}

func loginConfig(simulate bool) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Credentials.Email = "user@example.com"
	cfg.Credentials.Password = "hunter2"
	cfg.Execution.Simulate = simulate
	cfg.Timing.PageTimeoutSeconds = 1
	cfg.Timing.MinActionDelay = 0
	cfg.Timing.MaxActionDelay = 0
	return cfg
}

func newLoginFlow(t *testing.T, fake *enginetest.Fake, simulate bool) *cleaner.LoginFlow {
	t.Helper()
	logger := zaptest.NewLogger(t)
	loc := locator.New(fake, logger)
	pc := pacing.NewSeededController(logger, 1)
	return cleaner.NewLoginFlow(fake, loc, loginTable(), pc, loginConfig(simulate), logger)
}

// loginPage populates the fake with a complete login form.
func loginPage(fake *enginetest.Fake) {
	fake.Page["email"] = []*enginetest.Node{{Name: "email-field"}}
	fake.Page["password"] = []*enginetest.Node{{Name: "password-field"}}
	fake.Page["submit"] = []*enginetest.Node{{Name: "submit-button"}}
}

func TestLoginFlowLive(t *testing.T) {
	fake := enginetest.New()
	loginPage(fake)
	fake.Page["marker"] = []*enginetest.Node{{Name: "search-box"}}

	flow := newLoginFlow(t, fake, false)
	require.NoError(t, flow.Login(context.Background()))

	require.Len(t, fake.Typed, 2)
	assert.Equal(t, "user@example.com", fake.Typed[0].Text)
	assert.Equal(t, "hunter2", fake.Typed[1].Text)
	assert.Equal(t, []string{"submit-button"}, fake.ClickedNames())
	assert.Equal(t, []string{"https://www.facebook.com/login"}, fake.Navigations)
}

func TestLoginFlowSimulationNeverTypes(t *testing.T) {
	fake := enginetest.New()
	loginPage(fake)
	fake.Page["cookies"] = []*enginetest.Node{{Name: "accept-cookies"}}

	flow := newLoginFlow(t, fake, true)
	require.NoError(t, flow.Login(context.Background()))

	assert.Empty(t, fake.Typed)
	assert.Empty(t, fake.Clicks)
}

func TestLoginFlowMissingForm(t *testing.T) {
	fake := enginetest.New()

	flow := newLoginFlow(t, fake, false)
	err := flow.Login(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "login form not found")
}

func TestLoginFlowRejection(t *testing.T) {
	fake := enginetest.New()
	loginPage(fake)
	fake.Page["login-error"] = []*enginetest.Node{{Name: "error-box", Text: "Wrong password"}}

	flow := newLoginFlow(t, fake, false)
	err := flow.Login(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Wrong password")
}

func TestLoginFlowTwoFactor(t *testing.T) {
	fake := enginetest.New()
	loginPage(fake)
	fake.Page["2fa"] = []*enginetest.Node{{Name: "code-field"}}

	flow := newLoginFlow(t, fake, false)
	err := flow.Login(context.Background())

	assert.ErrorIs(t, err, cleaner.ErrTwoFactorRequired)
}

func TestLoginFlowCookieBannerAccepted(t *testing.T) {
	fake := enginetest.New()
	loginPage(fake)
	fake.Page["marker"] = []*enginetest.Node{{Name: "search-box"}}
	fake.Page["cookies"] = []*enginetest.Node{{Name: "accept-cookies"}}

	flow := newLoginFlow(t, fake, false)
	require.NoError(t, flow.Login(context.Background()))

	assert.Contains(t, fake.ClickedNames(), "accept-cookies")
}

func TestOpenActivityLogDirect(t *testing.T) {
	fake := enginetest.New()

	flow := newLoginFlow(t, fake, false)
	require.NoError(t, flow.OpenActivityLog(context.Background()))

	assert.Equal(t, []string{"https://www.facebook.com/me/allactivity"}, fake.Navigations)
}

func TestOpenActivityLogViaProfileLink(t *testing.T) {
	fake := enginetest.New()
	// Every navigation gets redirected to the home feed, so the direct URL
	// strategy fails and the profile link is used instead.
	link := &enginetest.Node{
		Name: "activity-link",
		OnClick: func() {
			fake.URL = "https://www.facebook.com/me/allactivity"
		},
	}
	fake.Page["activity"] = []*enginetest.Node{link}
	fake.OnNavigate = func(url string) string {
		return "https://www.facebook.com/home"
	}

	flow := newLoginFlow(t, fake, false)
	require.NoError(t, flow.OpenActivityLog(context.Background()))

	assert.Contains(t, fake.ClickedNames(), "activity-link")
}
