// File: cmd/clean.go
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/browser"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/cleaner"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/config"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/locator"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/observability"
	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/pacing"
)

// confirmPhrase must be typed verbatim before a live run proceeds.
const confirmPhrase = "DELETE"

// flagBindings maps clean command flags onto config keys.
var flagBindings = map[string]string{
	"email":             "credentials.email",
	"password":          "credentials.password",
	"sessions":          "cleaning.max_sessions",
	"posts-per-session": "cleaning.posts_per_session",
	"session-delay":     "timing.session_delay_seconds",
	"page-timeout":      "timing.page_timeout_seconds",
	"min-delay":         "timing.min_action_delay",
	"max-delay":         "timing.max_action_delay",
	"headless":          "browser.headless",
	"user-agent":        "browser.user_agent",
	"whatif":            "execution.simulate",
	"verbose":           "execution.verbose",
}

// newCleanCmd creates and configures the `clean` command.
func newCleanCmd() *cobra.Command {
	var saveConfig string

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Runs paced deletion sessions against the account's activity log",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for flag, key := range flagBindings {
				if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			// --dry-run is an alias kept for muscle memory.
			if cmd.Flags().Changed("dry-run") {
				viper.Set("execution.simulate", true)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if saveConfig != "" {
				if err := config.WriteTemplate(saveConfig); err != nil {
					return fmt.Errorf("failed to write config template: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration template written to %s\n", saveConfig)
				return nil
			}
			return runClean(cmd)
		},
	}

	flags := cleanCmd.Flags()
	flags.String("email", "", "account email")
	flags.String("password", "", "account password (or TIMELINE_CLEANUP_PASSWORD)")
	flags.Int("sessions", 5, "maximum number of cleanup sessions")
	flags.Int("posts-per-session", 10, "maximum deletions per session")
	flags.Int("session-delay", 300, "cooldown between sessions in seconds")
	flags.Int("page-timeout", 30, "page load timeout in seconds")
	flags.Float64("min-delay", 1.0, "minimum delay between actions in seconds")
	flags.Float64("max-delay", 3.0, "maximum delay between actions in seconds")
	flags.Bool("headless", false, "run the browser without a window")
	flags.String("user-agent", "", "custom browser user agent")
	flags.Bool("whatif", false, "simulation mode, nothing is deleted")
	flags.Bool("dry-run", false, "alias for --whatif")
	flags.BoolP("verbose", "v", false, "detailed output of all operations")
	flags.StringVar(&saveConfig, "save-config", "", "write a config template to the given path and exit")

	return cleanCmd
}

func runClean(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := config.NewConfigFromViper(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Execution.Verbose {
		cfg.Logger.Level = "debug"
	}

	observability.InitializeLogger(cfg.Logger)
	logger := observability.GetLogger()
	defer observability.Sync()

	tracker := cleaner.NewTracker(cfg.Execution.Simulate)
	runID := tracker.Snapshot().RunID
	logger.Info("Starting timeline cleanup",
		zap.String("version", Version),
		zap.String("run_id", runID),
		zap.Bool("simulate", cfg.Execution.Simulate),
	)

	cleaner.WriteBanner(out, cfg, runID)

	if !cfg.Execution.Simulate {
		if !confirmLiveRun(cmd) {
			fmt.Fprintln(out, "Aborted. Nothing was deleted.")
			return nil
		}
	}

	engine, err := browser.NewChromeEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = engine.Close(closeCtx)
	}()

	loc := locator.New(engine, logger)
	table := locator.DefaultTable()
	pc := pacing.NewController(logger)
	minDelay, maxDelay := cfg.Timing.ActionDelayBounds()
	machine := cleaner.NewStateMachine(engine, loc, table, pc, minDelay, maxDelay, cfg.Execution.Simulate, logger)

	orch := cleaner.NewOrchestrator(cfg, engine, loc, table, pc, machine, tracker, nil, logger)
	cooldownShown := false
	orch.OnCooldownTick = newCooldownPrinter(out, cfg.Execution.Verbose, &cooldownShown)

	stats, runErr := orch.Run(ctx)
	if cooldownShown {
		fmt.Fprintln(out)
	}

	cleaner.WriteReport(out, stats)
	return runErr
}

// newCooldownPrinter builds the inter-session countdown renderer. The
// countdown is verbose-only noise; quiet runs get a nil callback, which the
// orchestrator skips.
func newCooldownPrinter(out io.Writer, verbose bool, shown *bool) func(time.Duration) {
	if !verbose {
		return nil
	}
	return func(remaining time.Duration) {
		*shown = true
		fmt.Fprintf(out, "\r Next session in %s ", cleaner.FormatCountdown(remaining))
	}
}

// confirmLiveRun warns the operator and requires the confirmation phrase.
func confirmLiveRun(cmd *cobra.Command) bool {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "WARNING: you are about to permanently delete posts from this account.")
	fmt.Fprintln(out, "This operation is NOT reversible. Consider:")
	fmt.Fprintln(out, "  1. Running first with --whatif to test")
	fmt.Fprintln(out, "  2. Downloading a backup of your data first")
	fmt.Fprintln(out, "  3. Starting with a low --posts-per-session")
	fmt.Fprintf(out, "\nType '%s' to proceed: ", confirmPhrase)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false
	}
	return strings.TrimSpace(scanner.Text()) == confirmPhrase
}
