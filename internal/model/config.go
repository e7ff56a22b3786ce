package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ProviderConfig holds the configuration for a single provider integration.
type ProviderConfig struct {
	// ID is the unique identifier for this provider instance.
	ID string `mapstructure:"id" yaml:"id"`

	// Type identifies the provider kind ("github" or "jira").
	Type string `mapstructure:"type" yaml:"type"`

	// Name is the user-defined label for this provider instance.
	Name string `mapstructure:"name" yaml:"name"`

	// BaseURL is the root URL of the provider service.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Enabled controls whether this provider is actively synced.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// PollIntervalSec is how often (in seconds) a sync cycle runs.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// Config holds provider-specific key-value settings
	// (e.g., "jql" for Jira, "query" for GitHub).
	Config map[string]string `mapstructure:"config" yaml:"config"`
}

// TitleFormatOptions is a set of independent boolean flags controlling which
// decorations appear in rendered bookmark titles. No flag depends on another;
// any subset may be enabled.
type TitleFormatOptions struct {
	ShowStatus   bool `mapstructure:"show_status" yaml:"show_status"`
	ShowPriority bool `mapstructure:"show_priority" yaml:"show_priority"`
	ShowType     bool `mapstructure:"show_type" yaml:"show_type"`
	ShowAssignee bool `mapstructure:"show_assignee" yaml:"show_assignee"`
	ShowCreator  bool `mapstructure:"show_creator" yaml:"show_creator"`
	ShowAge      bool `mapstructure:"show_age" yaml:"show_age"`
	UseEmoji     bool `mapstructure:"use_emoji" yaml:"use_emoji"`
}

// NotificationSettings gates sync-outcome notifications. Both the global
// Enabled flag and the matching type-specific flag must be set for a
// notification to be delivered. Settings are re-read at every decision
// point, never cached.
type NotificationSettings struct {
	Enabled         bool `mapstructure:"enabled" yaml:"enabled"`
	NotifyOnSuccess bool `mapstructure:"notify_on_success" yaml:"notify_on_success"`
	NotifyOnError   bool `mapstructure:"notify_on_error" yaml:"notify_on_error"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	// Level is the minimum level emitted: debug, info, warn or error.
	Level string `mapstructure:"level" yaml:"level"`

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool `mapstructure:"pretty" yaml:"pretty"`

	// DebugMode disables sensitive-field redaction in log payloads.
	DebugMode bool `mapstructure:"debug_mode" yaml:"debug_mode"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Providers     []ProviderConfig     `mapstructure:"providers" yaml:"providers"`
	TitleFormat   TitleFormatOptions   `mapstructure:"title_format" yaml:"title_format"`
	Notifications NotificationSettings `mapstructure:"notifications" yaml:"notifications"`
	Log           LogConfig            `mapstructure:"log" yaml:"log"`

	// DatabasePath is the location of the local bookmark database.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
}

// Provider returns the configured provider entry with the given ID,
// or nil if none matches.
func (c *AppConfig) Provider(id string) *ProviderConfig {
	for i := range c.Providers {
		if c.Providers[i].ID == id {
			return &c.Providers[i]
		}
	}
	return nil
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/marksync/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "marksync", "config.yaml")
}

// DefaultDatabasePath returns the default location of the bookmark database.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "marksync.db")
	}
	return filepath.Join(home, ".local", "share", "marksync", "marksync.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Providers: []ProviderConfig{},
		TitleFormat: TitleFormatOptions{
			ShowStatus: true,
			UseEmoji:   true,
		},
		Notifications: NotificationSettings{
			Enabled:         true,
			NotifyOnSuccess: false,
			NotifyOnError:   true,
		},
		Log: LogConfig{
			Level: "info",
		},
		DatabasePath: DefaultDatabasePath(),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("title_format.show_status", true)
	v.SetDefault("title_format.use_emoji", true)
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.notify_on_error", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("database_path", DefaultDatabasePath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Apply defaults for each provider entry.
	for i := range cfg.Providers {
		if cfg.Providers[i].PollIntervalSec == 0 {
			cfg.Providers[i].PollIntervalSec = 300
		}
		if !cfg.Providers[i].Enabled {
			// Viper unmarshals missing bools as false; treat unset as true.
			// We use the raw viper value to distinguish explicit false from absent.
			key := fmt.Sprintf("providers.%d.enabled", i)
			if !v.IsSet(key) {
				cfg.Providers[i].Enabled = true
			}
		}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("providers", cfg.Providers)
	v.Set("title_format", cfg.TitleFormat)
	v.Set("notifications", cfg.Notifications)
	v.Set("log", cfg.Log)
	v.Set("database_path", cfg.DatabasePath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
