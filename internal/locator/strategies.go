// File: internal/locator/strategies.go
package locator

import "github.com/TheSeraphim/facebook-timeline-cleanup/internal/browser"

// DefaultTable returns the built-in strategy table. Selectors cover both the
// current React markup and the legacy classic markup, with English and
// Italian labels where text matching is the only option.
func DefaultTable() Table {
	return Table{
		TargetItemContainer: {
			{Name: "activity-log-item", Selector: browser.CSS("[data-testid='activity-log-item']")},
			{Name: "activity-pagelet-child", Selector: browser.CSS("[data-pagelet='ActivityLogList'] > div")},
			{Name: "classic-content-wrapper", Selector: browser.CSS(".userContentWrapper")},
			{Name: "article-role", Selector: browser.CSS("[role='article']")},
			{Name: "feed-story", Selector: browser.CSS("[data-testid='fbfeed_story']")},
		},
		TargetOptionsMenu: {
			{Name: "more-options-label", Selector: browser.CSS("[aria-label*='More options']")},
			{Name: "more-options-label-it", Selector: browser.CSS("[aria-label*='Altre opzioni']")},
			{Name: "post-menu-testid", Selector: browser.CSS("[data-testid='post_menu']")},
			{Name: "classic-more-button", Selector: browser.CSS(".UFIMoreButton")},
			{Name: "menu-popup", Selector: browser.CSS("[aria-haspopup='menu']")},
		},
		TargetDeleteAction: {
			{Name: "delete-testid", Selector: browser.CSS("[data-testid*='delete']")},
			{Name: "delete-link-text", Selector: browser.XPath("//a[contains(., 'Delete')]")},
			{Name: "delete-link-text-it", Selector: browser.XPath("//a[contains(., 'Elimina')]")},
			{Name: "delete-menuitem", Selector: browser.XPath("//*[@role='menuitem'][contains(., 'Delete')]")},
			{Name: "delete-menuitem-it", Selector: browser.XPath("//*[@role='menuitem'][contains(., 'Elimina')]")},
		},
		TargetConfirmButton: {
			{Name: "confirm-delete-testid", Selector: browser.CSS("[data-testid='confirm-delete-button']")},
			{Name: "delete-button-text", Selector: browser.XPath("//button[contains(., 'Delete')]")},
			{Name: "delete-button-text-it", Selector: browser.XPath("//button[contains(., 'Elimina')]")},
			{Name: "confirm-label", Selector: browser.CSS("[aria-label*='Confirm']")},
			{Name: "confirm-label-it", Selector: browser.CSS("[aria-label*='Conferma']")},
		},
		TargetTimestamp: {
			{Name: "story-subtitle-link", Selector: browser.CSS("[data-testid='story-subtitle'] a")},
			{Name: "classic-timestamp", Selector: browser.CSS(".timestampContent")},
			{Name: "time-element", Selector: browser.CSS("time")},
			{Name: "dated-title", Selector: browser.CSS("[title*='20']")},
		},

		TargetLoginEmail: {
			{Name: "email-field", Selector: browser.CSS("input[name='email']")},
			{Name: "email-field-id", Selector: browser.CSS("input#email")},
		},
		TargetLoginPassword: {
			{Name: "password-field", Selector: browser.CSS("input[name='pass']")},
			{Name: "password-field-id", Selector: browser.CSS("input#pass")},
		},
		TargetLoginSubmit: {
			{Name: "login-button", Selector: browser.CSS("button[name='login']")},
			{Name: "login-input", Selector: browser.CSS("input[name='login']")},
		},
		TargetLoggedInMarker: {
			{Name: "search-box", Selector: browser.CSS("[data-testid='search']")},
			{Name: "main-menu-label", Selector: browser.CSS("[aria-label*='main menu']")},
			{Name: "profile-link", Selector: browser.CSS("[data-testid='blue_bar_profile_link']")},
		},
		TargetLoginError: {
			{Name: "login-error-box", Selector: browser.CSS("[data-testid='royal_login_error']")},
		},
		TargetTwoFactorPrompt: {
			{Name: "approvals-code-field", Selector: browser.CSS("[name='approvals_code']")},
		},
		TargetCookieBanner: {
			{Name: "cookie-dialog-button", Selector: browser.CSS("[data-testid='cookie-policy-manage-dialog'] button")},
			{Name: "cookie-accept-attr", Selector: browser.CSS("[data-cookiebanner='accept_button']")},
			{Name: "accept-title-button", Selector: browser.CSS("button[title*='Accept']")},
			{Name: "accept-title-button-it", Selector: browser.CSS("button[title*='Accetta']")},
		},
		TargetActivityLink: {
			{Name: "allactivity-href", Selector: browser.CSS("a[href*='allactivity']")},
			{Name: "activity-href", Selector: browser.CSS("a[href*='activity']")},
			{Name: "activity-testid", Selector: browser.CSS("[data-testid*='activity']")},
			{Name: "activity-link-text", Selector: browser.XPath("//a[contains(., 'Activity Log')]")},
			{Name: "activity-link-text-it", Selector: browser.XPath("//a[contains(., 'Registro attività')]")},
		},
	}
}

// Strategies returns the chain for target, or nil when the table has none.
func (t Table) Strategies(target Target) []MatchStrategy {
	return t[target]
}
