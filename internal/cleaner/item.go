// File: internal/cleaner/item.go

// Package cleaner contains the timeline cleanup core: scanning the activity
// log, deleting items through the page menus, pacing the work across
// sessions, and keeping run statistics.
package cleaner

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/browser"
)

// identityTextRunes caps how much of an item's text feeds the content hash.
const identityTextRunes = 64

// displayTextLimit caps the text carried into logs and reports.
const displayTextLimit = 100

// Item is one deletable entry found in the activity log. Identity is a
// best-effort stable key for within-scan deduplication only; it is not
// reconciled across page reloads.
type Item struct {
	Identity       string
	DisplayText    string
	TimestampLabel string
	Handle         browser.Handle
}

// Identity derives an item key from the strongest available evidence: a
// data-testid attribute, then a DOM id, then a hash of the leading text.
func Identity(testID, domID, text string) string {
	if testID != "" {
		return "testid:" + testID
	}
	if domID != "" {
		return "domid:" + domID
	}
	return fmt.Sprintf("text:%016x", textHash(text))
}

func textHash(text string) uint64 {
	runes := []rune(text)
	if len(runes) > identityTextRunes {
		runes = runes[:identityTextRunes]
	}
	h := fnv.New64a()
	h.Write([]byte(string(runes)))
	return h.Sum64()
}

// displayText flattens and truncates raw element text for logging.
func displayText(text string) string {
	flat := strings.TrimSpace(strings.Join(strings.Fields(text), " "))
	runes := []rune(flat)
	if len(runes) > displayTextLimit {
		return string(runes[:displayTextLimit]) + "..."
	}
	return flat
}

// Dedupe drops later occurrences of an identity while preserving order. It
// is idempotent: running it on its own output changes nothing.
func Dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.Identity]; dup {
			continue
		}
		seen[it.Identity] = struct{}{}
		out = append(out, it)
	}
	return out
}
