// File: internal/cleaner/report.go
package cleaner

import (
	"fmt"
	"io"
	"time"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/config"
)

// WriteBanner prints the pre-run summary so the operator sees exactly what
// was configured before anything happens.
func WriteBanner(w io.Writer, cfg *config.Config, runID string) {
	mode := "LIVE"
	if cfg.Execution.Simulate {
		mode = "SIMULATION"
	}

	fmt.Fprintln(w, "============================================================")
	fmt.Fprintln(w, " Facebook Timeline Cleanup")
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintf(w, " Run ID:            %s\n", runID)
	fmt.Fprintf(w, " Mode:              %s\n", mode)
	fmt.Fprintf(w, " Account:           %s\n", cfg.Credentials.Email)
	fmt.Fprintf(w, " Sessions:          up to %d\n", cfg.Cleaning.MaxSessions)
	fmt.Fprintf(w, " Items per session: %d\n", cfg.Cleaning.PostsPerSession)
	fmt.Fprintf(w, " Session cooldown:  %s\n", cfg.Timing.SessionDelay())
	fmt.Fprintf(w, " Headless browser:  %t\n", cfg.Browser.Headless)
	fmt.Fprintln(w, "============================================================")
}

// WriteReport prints the end-of-run statistics. It is written for partial
// results too; an interrupted run reports whatever it managed to do.
func WriteReport(w io.Writer, stats RunStatistics) {
	title := "Final Report"
	if stats.Simulated {
		title = "Final Report (simulation, nothing was deleted)"
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintf(w, " %s\n", title)
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintf(w, " Run ID:             %s\n", stats.RunID)
	fmt.Fprintf(w, " Duration:           %s\n", stats.Duration.Round(time.Second))
	fmt.Fprintf(w, " Sessions completed: %d\n", stats.SessionsCompleted)
	fmt.Fprintf(w, " Items found:        %d\n", stats.ItemsFound)
	fmt.Fprintf(w, " Items deleted:      %d\n", stats.ItemsDeleted)
	fmt.Fprintf(w, " Items skipped:      %d\n", stats.ItemsSkipped)
	fmt.Fprintf(w, " Errors:             %d\n", stats.ErrorsEncountered)
	fmt.Fprintf(w, " Deletions/minute:   %.2f\n", stats.DeletionsPerMinute)
	if attempted := stats.ItemsDeleted + stats.ItemsSkipped; stats.ItemsDeleted > 0 && attempted > 0 {
		rate := float64(stats.ItemsDeleted) / float64(attempted) * 100
		fmt.Fprintf(w, " Success rate:       %.1f%%\n", rate)
	}

	if len(stats.Sessions) > 0 {
		fmt.Fprintln(w, "------------------------------------------------------------")
		for _, s := range stats.Sessions {
			fmt.Fprintf(w, " Session %d: attempted %d, deleted %d, skipped %d, errored %d\n",
				s.SessionIndex, s.Attempted, s.Deleted, s.Skipped, s.Errored)
		}
	}
	fmt.Fprintln(w, "============================================================")
}

// FormatCountdown renders a remaining duration as mm:ss for the cooldown
// ticker.
func FormatCountdown(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	total := int(remaining.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
