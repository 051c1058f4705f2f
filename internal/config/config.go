// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration. It is assembled once
// before the run starts, validated, and never mutated afterwards.
type Config struct {
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials" json:"credentials"`
	Cleaning    CleaningConfig    `mapstructure:"cleaning" yaml:"cleaning" json:"cleaning"`
	Timing      TimingConfig      `mapstructure:"timing" yaml:"timing" json:"timing"`
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser" json:"browser"`
	Execution   ExecutionConfig   `mapstructure:"execution" yaml:"execution" json:"execution"`
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger" json:"logger"`
}

// CredentialsConfig identifies the account whose timeline is cleaned.
// The password may come from the TIMELINE_CLEANUP_PASSWORD environment
// variable instead of the config file.
type CredentialsConfig struct {
	Email    string `mapstructure:"email" yaml:"email" json:"email"`
	Password string `mapstructure:"password" yaml:"password" json:"password"`
}

// CleaningConfig bounds how much work a run is allowed to do.
type CleaningConfig struct {
	PostsPerSession int `mapstructure:"posts_per_session" yaml:"posts_per_session" json:"posts_per_session"`
	MaxSessions     int `mapstructure:"max_sessions" yaml:"max_sessions" json:"max_sessions"`
}

// TimingConfig tunes the pacing that keeps the run looking human.
// Delay bounds are in seconds and may be fractional.
type TimingConfig struct {
	SessionDelaySeconds int     `mapstructure:"session_delay_seconds" yaml:"session_delay_seconds" json:"session_delay_seconds"`
	PageTimeoutSeconds  int     `mapstructure:"page_timeout_seconds" yaml:"page_timeout_seconds" json:"page_timeout_seconds"`
	MinActionDelay      float64 `mapstructure:"min_action_delay" yaml:"min_action_delay" json:"min_action_delay"`
	MaxActionDelay      float64 `mapstructure:"max_action_delay" yaml:"max_action_delay" json:"max_action_delay"`
	MinDeleteDelay      float64 `mapstructure:"min_delete_delay" yaml:"min_delete_delay" json:"min_delete_delay"`
	MaxDeleteDelay      float64 `mapstructure:"max_delete_delay" yaml:"max_delete_delay" json:"max_delete_delay"`
	MaxActionsPerMinute int     `mapstructure:"max_actions_per_minute" yaml:"max_actions_per_minute" json:"max_actions_per_minute"`
}

// SessionDelay returns the inter-session cooldown as a duration.
func (t TimingConfig) SessionDelay() time.Duration {
	return time.Duration(t.SessionDelaySeconds) * time.Second
}

// PageTimeout returns the page-load timeout as a duration.
func (t TimingConfig) PageTimeout() time.Duration {
	return time.Duration(t.PageTimeoutSeconds) * time.Second
}

// ActionDelayBounds returns the per-action delay bounds as durations.
func (t TimingConfig) ActionDelayBounds() (time.Duration, time.Duration) {
	return secondsToDuration(t.MinActionDelay), secondsToDuration(t.MaxActionDelay)
}

// DeleteDelayBounds returns the per-deletion delay bounds as durations.
func (t TimingConfig) DeleteDelayBounds() (time.Duration, time.Duration) {
	return secondsToDuration(t.MinDeleteDelay), secondsToDuration(t.MaxDeleteDelay)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// WindowConfig is the browser window geometry.
type WindowConfig struct {
	Width  int `mapstructure:"width" yaml:"width" json:"width"`
	Height int `mapstructure:"height" yaml:"height" json:"height"`
}

// BrowserConfig holds settings for the automation browser instance.
type BrowserConfig struct {
	Headless  bool         `mapstructure:"headless" yaml:"headless" json:"headless"`
	UserAgent string       `mapstructure:"user_agent" yaml:"user_agent" json:"user_agent"`
	Window    WindowConfig `mapstructure:"window" yaml:"window" json:"window"`
}

// ExecutionConfig selects the run mode.
type ExecutionConfig struct {
	Simulate bool `mapstructure:"simulate" yaml:"simulate" json:"simulate"`
	Verbose  bool `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level" json:"level"`
	Format      string `mapstructure:"format" yaml:"format" json:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source" json:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name" json:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file" json:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size" json:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age" json:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress" json:"compress"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Cleaning --
	v.SetDefault("cleaning.posts_per_session", 10)
	v.SetDefault("cleaning.max_sessions", 5)

	// -- Timing --
	v.SetDefault("timing.session_delay_seconds", 300)
	v.SetDefault("timing.page_timeout_seconds", 30)
	v.SetDefault("timing.min_action_delay", 1.0)
	v.SetDefault("timing.max_action_delay", 3.0)
	v.SetDefault("timing.min_delete_delay", 3.0)
	v.SetDefault("timing.max_delete_delay", 7.0)
	v.SetDefault("timing.max_actions_per_minute", 20)

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.user_agent", defaultUserAgent)
	v.SetDefault("browser.window.width", 1366)
	v.SetDefault("browser.window.height", 768)

	// -- Execution --
	v.SetDefault("execution.simulate", false)
	v.SetDefault("execution.verbose", false)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "timeline-cleanup")
	v.SetDefault("logger.log_file", "timeline-cleanup.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
}

// NewDefaultConfig creates a configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a validated configuration from a viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Bind the environment variable for the credential so it never has to
	// live in a config file.
	v.BindEnv("credentials.password", "TIMELINE_CLEANUP_PASSWORD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Credentials.Password == "" {
		cfg.Credentials.Password = os.Getenv("TIMELINE_CLEANUP_PASSWORD")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
// It runs exactly once, before any automation begins.
func (c *Config) Validate() error {
	if c.Credentials.Email == "" {
		return fmt.Errorf("credentials.email is required")
	}
	if c.Credentials.Password == "" && !c.Execution.Simulate {
		return fmt.Errorf("credentials.password is required unless simulate mode is active")
	}
	if c.Cleaning.MaxSessions <= 0 {
		return fmt.Errorf("cleaning.max_sessions must be a positive integer")
	}
	if c.Cleaning.PostsPerSession <= 0 {
		return fmt.Errorf("cleaning.posts_per_session must be a positive integer")
	}
	if c.Timing.SessionDelaySeconds < 0 {
		return fmt.Errorf("timing.session_delay_seconds cannot be negative")
	}
	if c.Timing.PageTimeoutSeconds <= 0 {
		return fmt.Errorf("timing.page_timeout_seconds must be a positive integer")
	}
	if c.Timing.MinActionDelay < 0 || c.Timing.MinDeleteDelay < 0 {
		return fmt.Errorf("delay bounds cannot be negative")
	}
	if c.Timing.MinActionDelay > c.Timing.MaxActionDelay {
		return fmt.Errorf("timing.min_action_delay cannot exceed timing.max_action_delay")
	}
	if c.Timing.MinDeleteDelay > c.Timing.MaxDeleteDelay {
		return fmt.Errorf("timing.min_delete_delay cannot exceed timing.max_delete_delay")
	}
	if c.Timing.MaxActionsPerMinute <= 0 {
		return fmt.Errorf("timing.max_actions_per_minute must be a positive integer")
	}
	return nil
}

// WriteTemplate writes a default configuration template to path so new users
// can fill in credentials and preferences before the first run.
func WriteTemplate(path string) error {
	cfg := NewDefaultConfig()

	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal config template: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config template to %s: %w", path, err)
	}
	return nil
}
