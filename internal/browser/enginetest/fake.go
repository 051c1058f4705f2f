// File: internal/browser/enginetest/fake.go

// Package enginetest provides a scriptable in-memory browser.Engine for
// exercising code that drives a page without a real browser.
package enginetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/browser"
)

// Node is a scripted element. Queries maps selector queries to the children
// returned when the node is used as a query scope.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Queries  map[string][]*Node
	Detached bool
	OnClick  func()
}

func (n *Node) ID() string { return n.Name }

// TypeEvent records a single TypeKeys call.
type TypeEvent struct {
	Node *Node
	Text string
}

// Fake is a deterministic Engine backed by scripted nodes. All waits return
// immediately and every interaction is recorded.
type Fake struct {
	mu sync.Mutex

	// Page maps selector queries to top-level results.
	Page map[string][]*Node

	// OnQuery, when set, intercepts every Query call before the static maps
	// are consulted. Returning handled=false falls through to Page/Queries.
	OnQuery func(scope browser.Handle, sel browser.Selector) (nodes []*Node, handled bool)

	// OnNavigate, when set, maps a requested URL to the URL the browser
	// lands on, simulating redirects.
	OnNavigate func(url string) string

	// Injected failures, keyed by node name.
	ClickErrs map[string]error

	// Recorded activity.
	Navigations []string
	Reloads     int
	Clicks      []*Node
	Typed       []TypeEvent
	Scrolled    []*Node
	Closed      bool

	// URL reported by CurrentURL; Navigate overwrites it.
	URL string
}

var _ browser.Engine = (*Fake)(nil)

// New returns an empty fake engine.
func New() *Fake {
	return &Fake{
		Page:      make(map[string][]*Node),
		ClickErrs: make(map[string]error),
	}
}

func (f *Fake) Navigate(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Navigations = append(f.Navigations, url)
	landed := url
	if f.OnNavigate != nil {
		landed = f.OnNavigate(url)
	}
	f.URL = landed
	return landed, nil
}

func (f *Fake) Reload(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reloads++
	return nil
}

func (f *Fake) CurrentURL(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.URL, nil
}

func (f *Fake) Query(ctx context.Context, scope browser.Handle, sel browser.Selector, _ time.Duration) ([]browser.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	onQuery := f.OnQuery
	f.mu.Unlock()

	if onQuery != nil {
		if nodes, handled := onQuery(scope, sel); handled {
			return toHandles(nodes), nil
		}
	}

	if scope == nil {
		f.mu.Lock()
		nodes := f.Page[sel.Query]
		f.mu.Unlock()
		return toHandles(nodes), nil
	}

	n, ok := scope.(*Node)
	if !ok {
		return nil, fmt.Errorf("foreign handle type %T passed to Fake", scope)
	}
	return toHandles(n.Queries[sel.Query]), nil
}

func (f *Fake) Text(_ context.Context, h browser.Handle) (string, error) {
	n, ok := h.(*Node)
	if !ok {
		return "", fmt.Errorf("foreign handle type %T passed to Fake", h)
	}
	if n.Detached {
		return "", fmt.Errorf("node %s is detached", n.Name)
	}
	return n.Text, nil
}

func (f *Fake) Attribute(_ context.Context, h browser.Handle, name string) (string, bool, error) {
	n, ok := h.(*Node)
	if !ok {
		return "", false, fmt.Errorf("foreign handle type %T passed to Fake", h)
	}
	v, ok := n.Attrs[name]
	return v, ok, nil
}

func (f *Fake) Click(_ context.Context, h browser.Handle) error {
	n, ok := h.(*Node)
	if !ok {
		return fmt.Errorf("foreign handle type %T passed to Fake", h)
	}

	f.mu.Lock()
	err := f.ClickErrs[n.Name]
	if err == nil {
		f.Clicks = append(f.Clicks, n)
	}
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if n.OnClick != nil {
		n.OnClick()
	}
	return nil
}

func (f *Fake) TypeKeys(_ context.Context, h browser.Handle, text string) error {
	n, ok := h.(*Node)
	if !ok {
		return fmt.Errorf("foreign handle type %T passed to Fake", h)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Typed = append(f.Typed, TypeEvent{Node: n, Text: text})
	return nil
}

func (f *Fake) ScrollIntoView(_ context.Context, h browser.Handle) error {
	n, ok := h.(*Node)
	if !ok {
		return fmt.Errorf("foreign handle type %T passed to Fake", h)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Scrolled = append(f.Scrolled, n)
	return nil
}

func (f *Fake) WaitReady(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func (f *Fake) WaitVisible(ctx context.Context, _ browser.Selector, _ time.Duration) error {
	return ctx.Err()
}

func (f *Fake) Close(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// ClickedNames reports the names of every node clicked so far, in order.
func (f *Fake) ClickedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.Clicks))
	for i, n := range f.Clicks {
		names[i] = n.Name
	}
	return names
}

func toHandles(nodes []*Node) []browser.Handle {
	if len(nodes) == 0 {
		return nil
	}
	handles := make([]browser.Handle, len(nodes))
	for i, n := range nodes {
		handles[i] = n
	}
	return handles
}
