package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, 2, cfg.Engine.FuzzyDistance)
	assert.Equal(t, 50000, cfg.Engine.NodeBudget)
	assert.Equal(t, 500, cfg.Engine.PrefixCap)
	assert.Equal(t, 100, cfg.Engine.MaxResults)
	assert.Equal(t, 7, cfg.Engine.DecayWindowDays)
	assert.Equal(t, "dir", cfg.Source.Kind)
	assert.Equal(t, 64, cfg.Source.BatchSize)
	assert.NotEmpty(t, cfg.Snapshot.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ProjectFileOverridesDefaults(t *testing.T) {
	// Given: a project config overriding two engine knobs
	dir := t.TempDir()
	content := []byte("engine:\n  fuzzy_distance: 1\n  max_results: 25\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".filesift.yaml"), content, 0o644))

	// When: loading against that directory
	cfg, err := Load(dir)
	require.NoError(t, err)

	// Then: overridden values apply and everything else keeps defaults
	assert.Equal(t, 1, cfg.Engine.FuzzyDistance)
	assert.Equal(t, 25, cfg.Engine.MaxResults)
	assert.Equal(t, 50000, cfg.Engine.NodeBudget)
}

func TestLoad_YmlFallback(t *testing.T) {
	dir := t.TempDir()
	content := []byte("engine:\n  prefix_cap: 50\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".filesift.yml"), content, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Engine.PrefixCap)
}

func TestLoad_EnvOverridesProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("engine:\n  fuzzy_distance: 1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".filesift.yaml"), content, 0o644))
	t.Setenv("FILESIFT_FUZZY_DISTANCE", "3")
	t.Setenv("FILESIFT_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Engine.FuzzyDistance)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidEnvValueIgnored(t *testing.T) {
	t.Setenv("FILESIFT_NODE_BUDGET", "not-a-number")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 50000, cfg.Engine.NodeBudget)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".filesift.yaml"), []byte("engine: ["), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative fuzzy distance", func(c *Config) { c.Engine.FuzzyDistance = -1 }},
		{"excessive fuzzy distance", func(c *Config) { c.Engine.FuzzyDistance = 9 }},
		{"zero node budget", func(c *Config) { c.Engine.NodeBudget = 0 }},
		{"zero prefix cap", func(c *Config) { c.Engine.PrefixCap = 0 }},
		{"zero max results", func(c *Config) { c.Engine.MaxResults = 0 }},
		{"zero decay window", func(c *Config) { c.Engine.DecayWindowDays = 0 }},
		{"unknown source kind", func(c *Config) { c.Source.Kind = "kafka" }},
		{"sqlite without dsn", func(c *Config) { c.Source.Kind = "sqlite"; c.Source.DSN = "" }},
		{"zero batch size", func(c *Config) { c.Source.BatchSize = 0 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWriteYAML_RoundTrips(t *testing.T) {
	// Given: a config written by `filesift init`
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := NewConfig()
	cfg.Engine.MaxResults = 42
	require.NoError(t, cfg.WriteYAML(path))

	// When: reading it back through the merge path
	loaded := NewConfig()
	require.NoError(t, loaded.loadYAML(path))

	// Then: the written value survives
	assert.Equal(t, 42, loaded.Engine.MaxResults)
}

func TestUserConfigPath_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	assert.Equal(t, "/tmp/xdg-test/filesift/config.yaml", GetUserConfigPath())
}

func TestLoad_UserConfigLayered(t *testing.T) {
	// Given: a user config under a fake XDG home and no project config
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	userDir := filepath.Join(xdg, "filesift")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	content := []byte("engine:\n  decay_window_days: 14\n")
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.yaml"), content, 0o644))

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Engine.DecayWindowDays)
}
