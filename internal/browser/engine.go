// File: internal/browser/engine.go
// Description: The narrow page-automation contract the cleanup logic is
// written against. The production implementation drives a real browser over
// CDP; tests substitute a scripted fake.

package browser

import (
	"context"
	"time"
)

// SelectorKind discriminates the query language of a Selector.
type SelectorKind int

const (
	// KindCSS queries with a CSS selector.
	KindCSS SelectorKind = iota
	// KindXPath queries with an XPath expression.
	KindXPath
)

// Selector is a selection criterion against the live page.
type Selector struct {
	Query string
	Kind  SelectorKind
}

// CSS builds a CSS selector.
func CSS(query string) Selector { return Selector{Query: query, Kind: KindCSS} }

// XPath builds an XPath selector.
func XPath(query string) Selector { return Selector{Query: query, Kind: KindXPath} }

// Handle is an opaque reference to a live page element. It is owned by the
// engine that produced it and is only valid until the page is refreshed or
// navigated; callers must not hold it past the current deletion attempt.
type Handle interface {
	// ID returns a short identifier suitable for logging.
	ID() string
}

// Engine is the page-automation collaborator. All blocking operations take a
// context and observe its cancellation; waits are additionally bounded by an
// explicit timeout so the process can never hang indefinitely.
type Engine interface {
	// Navigate loads a URL, waits for the document to settle, and reports
	// the resulting URL (which may differ after redirects).
	Navigate(ctx context.Context, url string) (string, error)

	// Reload refreshes the current page.
	Reload(ctx context.Context) error

	// CurrentURL reports the URL of the current page.
	CurrentURL(ctx context.Context) (string, error)

	// Query returns the elements matching sel within scope (nil scope means
	// the whole page). It waits up to timeout for at least one match; an
	// elapsed wait is not an error and yields an empty result.
	Query(ctx context.Context, scope Handle, sel Selector, timeout time.Duration) ([]Handle, error)

	// Text reads the visible text content of an element. It fails if the
	// element is no longer attached to the page.
	Text(ctx context.Context, h Handle) (string, error)

	// Attribute reads a named attribute; ok reports whether it is present.
	Attribute(ctx context.Context, h Handle, name string) (value string, ok bool, err error)

	// Click performs a click-equivalent action on an element.
	Click(ctx context.Context, h Handle) error

	// TypeKeys sends text to an element key by key, with small randomized
	// inter-key pauses, to mimic human input.
	TypeKeys(ctx context.Context, h Handle, text string) error

	// ScrollIntoView brings an element into the viewport.
	ScrollIntoView(ctx context.Context, h Handle) error

	// WaitReady blocks until the document is fully loaded or timeout elapses.
	WaitReady(ctx context.Context, timeout time.Duration) error

	// WaitVisible blocks until an element matching sel is present and
	// visible, or timeout elapses.
	WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) error

	// Close shuts the automation session down. It is idempotent and safe to
	// call regardless of the session's state.
	Close(ctx context.Context) error
}

// CombineContext creates a context derived from primary that is canceled when
// either primary or secondary is canceled. It inherits values from primary,
// which matters for CDP operations where the primary context carries the
// browser target.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)

	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}
