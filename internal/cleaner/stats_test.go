// File: internal/cleaner/stats_test.go
package cleaner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/cleaner"
)

func TestTrackerCountsOutcomes(t *testing.T) {
	tracker := cleaner.NewTracker(false)

	tracker.RecordFound(5)
	tracker.RecordOutcome(cleaner.Outcome{Result: cleaner.ResultDeleted})
	tracker.RecordOutcome(cleaner.Outcome{Result: cleaner.ResultDeleted})
	tracker.RecordOutcome(cleaner.Outcome{Result: cleaner.ResultSkipped, Reason: "menu not found"})
	tracker.RecordOutcome(cleaner.Outcome{Result: cleaner.ResultErrored, Reason: "boom"})
	result := tracker.SessionCompleted(1)

	assert.Equal(t, 1, result.SessionIndex)
	assert.Equal(t, 4, result.Attempted)
	assert.Equal(t, 2, result.Deleted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Errored)

	stats := tracker.Snapshot()
	assert.Equal(t, 5, stats.ItemsFound)
	assert.Equal(t, 2, stats.ItemsDeleted)
	assert.Equal(t, 1, stats.ItemsSkipped)
	assert.Equal(t, 1, stats.ErrorsEncountered)
	assert.Equal(t, 1, stats.SessionsCompleted)
	assert.NotEmpty(t, stats.RunID)
	assert.False(t, stats.Simulated)

	// Every counted outcome refers to an item that was counted as found.
	assert.LessOrEqual(t, stats.ItemsDeleted+stats.ItemsSkipped+stats.ErrorsEncountered, stats.ItemsFound)
}

func TestTrackerSessionsAccumulate(t *testing.T) {
	tracker := cleaner.NewTracker(true)

	tracker.RecordFound(2)
	tracker.RecordOutcome(cleaner.Outcome{Result: cleaner.ResultDeleted})
	tracker.RecordOutcome(cleaner.Outcome{Result: cleaner.ResultDeleted})
	tracker.SessionCompleted(1)

	tracker.RecordFound(1)
	tracker.RecordOutcome(cleaner.Outcome{Result: cleaner.ResultSkipped})
	tracker.SessionCompleted(2)

	stats := tracker.Snapshot()
	require.Len(t, stats.Sessions, 2)
	assert.Equal(t, 2, stats.Sessions[0].Deleted)
	assert.Equal(t, 1, stats.Sessions[1].Skipped)
	assert.Equal(t, 2, stats.SessionsCompleted)
	assert.True(t, stats.Simulated)
}

func TestSnapshotIsACopy(t *testing.T) {
	tracker := cleaner.NewTracker(false)
	tracker.RecordFound(1)
	tracker.RecordOutcome(cleaner.Outcome{Result: cleaner.ResultDeleted})
	tracker.SessionCompleted(1)

	first := tracker.Snapshot()
	first.Sessions[0].Deleted = 99

	second := tracker.Snapshot()
	assert.Equal(t, 1, second.Sessions[0].Deleted)
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "05:00", cleaner.FormatCountdown(300e9))
	assert.Equal(t, "00:59", cleaner.FormatCountdown(59e9))
	assert.Equal(t, "00:00", cleaner.FormatCountdown(0))
	assert.Equal(t, "00:00", cleaner.FormatCountdown(-5e9))
}
