package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Providers)
	assert.True(t, cfg.TitleFormat.ShowStatus)
	assert.True(t, cfg.TitleFormat.UseEmoji)
	assert.True(t, cfg.Notifications.Enabled)
	assert.False(t, cfg.Notifications.NotifyOnSuccess)
	assert.True(t, cfg.Notifications.NotifyOnError)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.DatabasePath)
}

func TestLoadConfigParsesProviders(t *testing.T) {
	path := writeConfig(t, `
providers:
  - id: jira-main
    type: jira
    name: Corporate Jira
    base_url: https://jira.corp.example.com
    config:
      jql: "project = PROJ"
  - id: github-main
    type: github
    enabled: false
    poll_interval_sec: 60
log:
  level: debug
  debug_mode: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 2)

	jira := cfg.Provider("jira-main")
	require.NotNil(t, jira)
	assert.Equal(t, "jira", jira.Type)
	assert.Equal(t, "https://jira.corp.example.com", jira.BaseURL)
	assert.Equal(t, "project = PROJ", jira.Config["jql"])

	// Absent enabled defaults to true; absent interval defaults to 5 minutes.
	assert.True(t, jira.Enabled)
	assert.Equal(t, 300, jira.PollIntervalSec)

	gh := cfg.Provider("github-main")
	require.NotNil(t, gh)
	assert.False(t, gh.Enabled)
	assert.Equal(t, 60, gh.PollIntervalSec)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.DebugMode)
}

func TestLoadConfigUnknownProviderLookup(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Provider("nope"))
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := defaultAppConfig()
	cfg.Providers = []ProviderConfig{{
		ID:              "jira-main",
		Type:            "jira",
		BaseURL:         "https://jira.corp.example.com",
		Enabled:         true,
		PollIntervalSec: 120,
	}}
	cfg.TitleFormat.ShowPriority = true
	cfg.Notifications.NotifyOnSuccess = true

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, loaded.Providers, 1)
	assert.Equal(t, "jira-main", loaded.Providers[0].ID)
	assert.Equal(t, 120, loaded.Providers[0].PollIntervalSec)
	assert.True(t, loaded.TitleFormat.ShowPriority)
	assert.True(t, loaded.Notifications.NotifyOnSuccess)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "providers: [unclosed")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
