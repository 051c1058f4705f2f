// File: cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/config"
)

var cfgFile string

// newRootCmd assembles the full command tree. Each call produces an
// independent tree with flags at their defaults.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "timeline-cleanup",
		Short: "Gradual, paced deletion of Facebook timeline posts",
		Long: `timeline-cleanup signs into a Facebook account with a real browser and
deletes activity log entries in small paced sessions. Run it with --whatif
first: simulation mode walks the whole flow without deleting anything.`,
		// Version is set at build time. See cmd/version.go.
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./timeline-cleanup.yaml, then $HOME)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.AddCommand(newCleanCmd())
	return root
}

// Execute runs the CLI under the given signal-aware context and returns the
// error for the caller to map onto an exit code.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// initializeConfig sets defaults and reads the config file and environment.
func initializeConfig() error {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName("timeline-cleanup")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TIMELINE_CLEANUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine; defaults, env vars, and flags carry it.
	}
	return nil
}
