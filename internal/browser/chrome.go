// File: internal/browser/chrome.go
package browser

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/config"
)

// chromeHandle wraps a CDP node reference.
type chromeHandle struct {
	node *cdp.Node
}

func (h *chromeHandle) ID() string {
	return fmt.Sprintf("node#%d", h.node.NodeID)
}

// xpath returns an absolute XPath for re-addressing the node in selector
// based actions. It fails once the node has been detached from the document.
func (h *chromeHandle) xpath() string {
	return h.node.FullXPath()
}

// ChromeEngine implements Engine on top of a real Chrome instance driven over
// the DevTools protocol. One engine owns exactly one browser for the whole
// run.
type ChromeEngine struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	logger      *zap.Logger
	pageTimeout time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand

	closeOnce sync.Once
	closeErr  error
}

var _ Engine = (*ChromeEngine)(nil)

// webdriverShim removes the most common automation tell before any page
// script runs.
const webdriverShim = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// NewChromeEngine launches a browser configured for low-profile automation
// and returns an engine bound to it.
func NewChromeEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ChromeEngine, error) {
	log := logger.Named("browser")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Browser.Headless),
		chromedp.UserAgent(cfg.Browser.UserAgent),
		chromedp.WindowSize(cfg.Browser.Window.Width, cfg.Browser.Window.Height),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug(fmt.Sprintf(format, args...))
		}),
	)

	e := &ChromeEngine{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        log,
		pageTimeout:   cfg.Timing.PageTimeout(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	// Start the browser process and install the stealth shim for every
	// document created from here on.
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(webdriverShim).Do(ctx)
		return err
	}))
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Info("Browser launched",
		zap.Bool("headless", cfg.Browser.Headless),
		zap.Int("window_width", cfg.Browser.Window.Width),
		zap.Int("window_height", cfg.Browser.Window.Height),
	)
	return e, nil
}

// run executes chromedp actions under a context combining the browser
// lifecycle with the caller's deadline.
func (e *ChromeEngine) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := CombineContext(e.browserCtx, ctx)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

// Navigate loads url, waits for the document to settle, and reports the URL
// the browser ended up at.
func (e *ChromeEngine) Navigate(ctx context.Context, url string) (string, error) {
	e.logger.Debug("Navigating", zap.String("url", url))

	if err := e.run(ctx, chromedp.Navigate(url)); err != nil {
		return "", fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	if err := e.WaitReady(ctx, e.pageTimeout); err != nil {
		// A slow page is reported but not fatal; the caller decides.
		e.logger.Warn("Timeout waiting for page load", zap.String("url", url), zap.Error(err))
	}
	return e.CurrentURL(ctx)
}

// Reload refreshes the current page.
func (e *ChromeEngine) Reload(ctx context.Context) error {
	if err := e.run(ctx, chromedp.Reload()); err != nil {
		return fmt.Errorf("page reload failed: %w", err)
	}
	return nil
}

// CurrentURL reports the URL of the current page.
func (e *ChromeEngine) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := e.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read current location: %w", err)
	}
	return loc, nil
}

// Query returns elements matching sel within scope, waiting up to timeout for
// at least one match. An elapsed wait yields an empty result, not an error;
// markup variance makes "nothing matched" an ordinary outcome.
func (e *ChromeEngine) Query(ctx context.Context, scope Handle, sel Selector, timeout time.Duration) ([]Handle, error) {
	opCtx, cancel := CombineContext(e.browserCtx, ctx)
	defer cancel()
	queryCtx, queryCancel := context.WithTimeout(opCtx, timeout)
	defer queryCancel()

	opts := []chromedp.QueryOption{chromedp.ByQueryAll}
	if sel.Kind == KindXPath {
		opts = []chromedp.QueryOption{chromedp.BySearch}
	}
	if scope != nil {
		ch, ok := scope.(*chromeHandle)
		if !ok {
			return nil, fmt.Errorf("foreign handle type %T passed to ChromeEngine", scope)
		}
		opts = append(opts, chromedp.FromNode(ch.node))
	}

	var nodes []*cdp.Node
	err := chromedp.Run(queryCtx, chromedp.Nodes(sel.Query, &nodes, opts...))
	if err != nil {
		// The bounded wait elapsing means no match, unless the caller or the
		// browser itself went away.
		if queryCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil && e.browserCtx.Err() == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("query %q failed: %w", sel.Query, err)
	}

	handles := make([]Handle, 0, len(nodes))
	for _, n := range nodes {
		handles = append(handles, &chromeHandle{node: n})
	}
	return handles, nil
}

// Text reads the visible text content of an element.
func (e *ChromeEngine) Text(ctx context.Context, h Handle) (string, error) {
	ch, ok := h.(*chromeHandle)
	if !ok {
		return "", fmt.Errorf("foreign handle type %T passed to ChromeEngine", h)
	}

	opCtx, cancel := CombineContext(e.browserCtx, ctx)
	defer cancel()
	textCtx, textCancel := context.WithTimeout(opCtx, 5*time.Second)
	defer textCancel()

	var text string
	if err := chromedp.Run(textCtx, chromedp.Text(ch.xpath(), &text, chromedp.BySearch)); err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", h.ID(), err)
	}
	return text, nil
}

// Attribute reads a named attribute from the element's last known state.
func (e *ChromeEngine) Attribute(_ context.Context, h Handle, name string) (string, bool, error) {
	ch, ok := h.(*chromeHandle)
	if !ok {
		return "", false, fmt.Errorf("foreign handle type %T passed to ChromeEngine", h)
	}

	attrs := ch.node.Attributes
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i] == name {
			return attrs[i+1], true, nil
		}
	}
	return "", false, nil
}

// Click performs a mouse click on the element.
func (e *ChromeEngine) Click(ctx context.Context, h Handle) error {
	ch, ok := h.(*chromeHandle)
	if !ok {
		return fmt.Errorf("foreign handle type %T passed to ChromeEngine", h)
	}
	if err := e.run(ctx, chromedp.MouseClickNode(ch.node)); err != nil {
		return fmt.Errorf("click on %s failed: %w", h.ID(), err)
	}
	return nil
}

// TypeKeys focuses the element and sends text one key at a time with a small
// randomized pause between keys, the way a person types.
func (e *ChromeEngine) TypeKeys(ctx context.Context, h Handle, text string) error {
	ch, ok := h.(*chromeHandle)
	if !ok {
		return fmt.Errorf("foreign handle type %T passed to ChromeEngine", h)
	}

	err := e.run(ctx, chromedp.ActionFunc(func(actionCtx context.Context) error {
		if err := dom.Focus().WithNodeID(ch.node.NodeID).Do(actionCtx); err != nil {
			return fmt.Errorf("failed to focus %s: %w", h.ID(), err)
		}
		for _, r := range text {
			if err := chromedp.KeyEvent(string(r)).Do(actionCtx); err != nil {
				return fmt.Errorf("key event failed: %w", err)
			}
			if err := chromedp.Sleep(e.interKeyPause()).Do(actionCtx); err != nil {
				return err
			}
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("typing into %s failed: %w", h.ID(), err)
	}
	return nil
}

// interKeyPause draws a 50-150ms pause between keystrokes.
func (e *ChromeEngine) interKeyPause() time.Duration {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return time.Duration(50+e.rng.Intn(100)) * time.Millisecond
}

// ScrollIntoView brings the element into the viewport.
func (e *ChromeEngine) ScrollIntoView(ctx context.Context, h Handle) error {
	ch, ok := h.(*chromeHandle)
	if !ok {
		return fmt.Errorf("foreign handle type %T passed to ChromeEngine", h)
	}
	err := e.run(ctx, chromedp.ActionFunc(func(actionCtx context.Context) error {
		return dom.ScrollIntoViewIfNeeded().WithNodeID(ch.node.NodeID).Do(actionCtx)
	}))
	if err != nil {
		return fmt.Errorf("scroll to %s failed: %w", h.ID(), err)
	}
	return nil
}

// WaitReady polls document.readyState until the document is fully loaded or
// timeout elapses.
func (e *ChromeEngine) WaitReady(ctx context.Context, timeout time.Duration) error {
	opCtx, cancel := CombineContext(e.browserCtx, ctx)
	defer cancel()
	waitCtx, waitCancel := context.WithTimeout(opCtx, timeout)
	defer waitCancel()

	for {
		var state string
		if err := chromedp.Run(waitCtx, chromedp.Evaluate(`document.readyState`, &state)); err != nil {
			if waitCtx.Err() != nil {
				return fmt.Errorf("document not ready after %s: %w", timeout, waitCtx.Err())
			}
			return fmt.Errorf("readiness check failed: %w", err)
		}
		if state == "complete" {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("document not ready after %s: %w", timeout, waitCtx.Err())
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// WaitVisible blocks until an element matching sel is visible or timeout
// elapses.
func (e *ChromeEngine) WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) error {
	opCtx, cancel := CombineContext(e.browserCtx, ctx)
	defer cancel()
	waitCtx, waitCancel := context.WithTimeout(opCtx, timeout)
	defer waitCancel()

	opts := []chromedp.QueryOption{chromedp.ByQuery}
	if sel.Kind == KindXPath {
		opts = []chromedp.QueryOption{chromedp.BySearch}
	}
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(sel.Query, opts...)); err != nil {
		return fmt.Errorf("element %q not visible after %s: %w", sel.Query, timeout, err)
	}
	return nil
}

// Close shuts the browser down. Safe to call more than once; only the first
// call does work.
func (e *ChromeEngine) Close(ctx context.Context) error {
	e.closeOnce.Do(func() {
		e.logger.Info("Closing browser session")

		// Graceful browser shutdown, bounded by the caller's context.
		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(e.browserCtx) }()
		select {
		case err := <-done:
			e.closeErr = err
		case <-ctx.Done():
			e.closeErr = ctx.Err()
		}

		e.browserCancel()
		e.allocCancel()
	})
	return e.closeErr
}
