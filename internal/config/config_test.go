// File: internal/config/config_test.go
package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheSeraphim/facebook-timeline-cleanup/internal/config"
)

func validConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Credentials.Email = "user@example.com"
	cfg.Credentials.Password = "hunter2"
	return cfg
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()

	assert.Equal(t, 10, cfg.Cleaning.PostsPerSession)
	assert.Equal(t, 5, cfg.Cleaning.MaxSessions)
	assert.Equal(t, 300, cfg.Timing.SessionDelaySeconds)
	assert.Equal(t, 30, cfg.Timing.PageTimeoutSeconds)
	assert.Equal(t, 1.0, cfg.Timing.MinActionDelay)
	assert.Equal(t, 3.0, cfg.Timing.MaxActionDelay)
	assert.False(t, cfg.Browser.Headless)
	assert.False(t, cfg.Execution.Simulate)
	assert.Equal(t, 1366, cfg.Browser.Window.Width)
	assert.Equal(t, 768, cfg.Browser.Window.Height)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr bool
	}{
		{
			name:   "valid config passes",
			mutate: func(cfg *config.Config) {},
		},
		{
			name:    "missing email is rejected",
			mutate:  func(cfg *config.Config) { cfg.Credentials.Email = "" },
			wantErr: true,
		},
		{
			name:    "missing password is rejected in live mode",
			mutate:  func(cfg *config.Config) { cfg.Credentials.Password = "" },
			wantErr: true,
		},
		{
			name: "missing password is allowed in simulate mode",
			mutate: func(cfg *config.Config) {
				cfg.Credentials.Password = ""
				cfg.Execution.Simulate = true
			},
		},
		{
			name:    "zero sessions rejected",
			mutate:  func(cfg *config.Config) { cfg.Cleaning.MaxSessions = 0 },
			wantErr: true,
		},
		{
			name:    "zero posts per session rejected",
			mutate:  func(cfg *config.Config) { cfg.Cleaning.PostsPerSession = 0 },
			wantErr: true,
		},
		{
			name:    "negative session delay rejected",
			mutate:  func(cfg *config.Config) { cfg.Timing.SessionDelaySeconds = -1 },
			wantErr: true,
		},
		{
			name:    "zero page timeout rejected",
			mutate:  func(cfg *config.Config) { cfg.Timing.PageTimeoutSeconds = 0 },
			wantErr: true,
		},
		{
			name: "inverted action delay bounds rejected",
			mutate: func(cfg *config.Config) {
				cfg.Timing.MinActionDelay = 5.0
				cfg.Timing.MaxActionDelay = 1.0
			},
			wantErr: true,
		},
		{
			name: "inverted delete delay bounds rejected",
			mutate: func(cfg *config.Config) {
				cfg.Timing.MinDeleteDelay = 9.0
				cfg.Timing.MaxDeleteDelay = 3.0
			},
			wantErr: true,
		},
		{
			name:    "negative delay rejected",
			mutate:  func(cfg *config.Config) { cfg.Timing.MinActionDelay = -0.5 },
			wantErr: true,
		},
		{
			name:    "zero actions per minute rejected",
			mutate:  func(cfg *config.Config) { cfg.Timing.MaxActionsPerMinute = 0 },
			wantErr: true,
		},
		{
			name: "equal delay bounds allowed",
			mutate: func(cfg *config.Config) {
				cfg.Timing.MinActionDelay = 2.0
				cfg.Timing.MaxActionDelay = 2.0
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewConfigFromViper(t *testing.T) {
	t.Run("rejects invalid configuration", func(t *testing.T) {
		v := viper.New()
		config.SetDefaults(v)

		_, err := config.NewConfigFromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("password can come from the environment", func(t *testing.T) {
		t.Setenv("TIMELINE_CLEANUP_PASSWORD", "from-env")

		v := viper.New()
		config.SetDefaults(v)
		v.Set("credentials.email", "user@example.com")

		cfg, err := config.NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Credentials.Password)
	})

	t.Run("explicit password wins over the environment", func(t *testing.T) {
		t.Setenv("TIMELINE_CLEANUP_PASSWORD", "from-env")

		v := viper.New()
		config.SetDefaults(v)
		v.Set("credentials.email", "user@example.com")
		v.Set("credentials.password", "from-file")

		cfg, err := config.NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.Credentials.Password)
	})
}

func TestTimingConversions(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Timing.SessionDelaySeconds = 90
	cfg.Timing.MinDeleteDelay = 0.5
	cfg.Timing.MaxDeleteDelay = 1.5

	assert.Equal(t, "1m30s", cfg.Timing.SessionDelay().String())

	min, max := cfg.Timing.DeleteDelayBounds()
	assert.Equal(t, "500ms", min.String())
	assert.Equal(t, "1.5s", max.String())
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.json")
	require.NoError(t, config.WriteTemplate(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"posts_per_session"`)
	assert.Contains(t, string(data), `"credentials"`)
}
