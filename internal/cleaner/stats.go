// File: internal/cleaner/stats.go
package cleaner

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionResult summarizes one cleanup session.
type SessionResult struct {
	SessionIndex int `json:"session_index"`
	Attempted    int `json:"attempted"`
	Deleted      int `json:"deleted"`
	Skipped      int `json:"skipped"`
	Errored      int `json:"errored"`
}

// RunStatistics is the aggregate record of one run. Counters hold the
// invariant deleted+skipped+errors <= found: every counted outcome refers to
// an item that was first counted as found.
type RunStatistics struct {
	RunID              string          `json:"run_id"`
	ItemsFound         int             `json:"items_found"`
	ItemsDeleted       int             `json:"items_deleted"`
	ItemsSkipped       int             `json:"items_skipped"`
	ErrorsEncountered  int             `json:"errors_encountered"`
	SessionsCompleted  int             `json:"sessions_completed"`
	StartTime          time.Time       `json:"start_time"`
	EndTime            time.Time       `json:"end_time"`
	Duration           time.Duration   `json:"duration"`
	DeletionsPerMinute float64         `json:"deletions_per_minute"`
	Simulated          bool            `json:"simulated"`
	Sessions           []SessionResult `json:"sessions"`
}

// Tracker accumulates run statistics. All methods are safe for concurrent
// use; a Snapshot taken at any point is internally consistent.
type Tracker struct {
	mu      sync.Mutex
	stats   RunStatistics
	current SessionResult
}

// NewTracker starts a tracker for a fresh run.
func NewTracker(simulated bool) *Tracker {
	return &Tracker{
		stats: RunStatistics{
			RunID:     uuid.NewString(),
			StartTime: time.Now(),
			Simulated: simulated,
		},
	}
}

// RecordFound counts items discovered by a scan, before any per-session cap
// is applied.
func (t *Tracker) RecordFound(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.ItemsFound += n
}

// RecordOutcome counts a single attempt against the current session.
func (t *Tracker) RecordOutcome(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current.Attempted++
	switch o.Result {
	case ResultDeleted:
		t.stats.ItemsDeleted++
		t.current.Deleted++
	case ResultSkipped:
		t.stats.ItemsSkipped++
		t.current.Skipped++
	case ResultErrored:
		t.stats.ErrorsEncountered++
		t.current.Errored++
	}
}

// SessionCompleted closes out the current session and returns its result.
func (t *Tracker) SessionCompleted(sessionIndex int) SessionResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current.SessionIndex = sessionIndex
	result := t.current
	t.stats.Sessions = append(t.stats.Sessions, result)
	t.stats.SessionsCompleted++
	t.current = SessionResult{}
	return result
}

// Snapshot finalizes derived metrics and returns a copy of the statistics.
func (t *Tracker) Snapshot() RunStatistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stats
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	if mins := s.Duration.Minutes(); mins > 0 {
		s.DeletionsPerMinute = float64(s.ItemsDeleted) / mins
	}
	s.Sessions = append([]SessionResult(nil), t.stats.Sessions...)
	return s
}
