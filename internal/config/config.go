// Package config loads filesift configuration with the precedence chain
// defaults -> user config (XDG) -> project .filesift.yaml -> FILESIFT_* env
// overrides, then validates the result.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete filesift configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Engine    EngineConfig    `yaml:"engine" json:"engine"`
	Snapshot  SnapshotConfig  `yaml:"snapshot" json:"snapshot"`
	Source    SourceConfig    `yaml:"source" json:"source"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// EngineConfig tunes the search engine core.
type EngineConfig struct {
	// FuzzyDistance is the maximum edit distance for fuzzy matching.
	FuzzyDistance int `yaml:"fuzzy_distance" json:"fuzzy_distance"`

	// NodeBudget caps trie nodes visited per fuzzy traversal.
	NodeBudget int `yaml:"node_budget" json:"node_budget"`

	// PrefixCap caps file ids returned by one prefix search.
	PrefixCap int `yaml:"prefix_cap" json:"prefix_cap"`

	// MaxResults clamps the caller-supplied search limit.
	MaxResults int `yaml:"max_results" json:"max_results"`

	// DecayWindowDays is the interaction-learning decay window.
	DecayWindowDays int `yaml:"decay_window_days" json:"decay_window_days"`

	// CacheSize is the query result LRU capacity. 0 disables the cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// SnapshotConfig configures index persistence.
type SnapshotConfig struct {
	// Path is the snapshot file location.
	Path string `yaml:"path" json:"path"`
}

// SourceConfig selects and configures the metadata source.
type SourceConfig struct {
	// Kind is "dir" (scan a directory tree) or "sqlite" (read a files table).
	Kind string `yaml:"kind" json:"kind"`

	// Root is the directory to scan when Kind is "dir".
	Root string `yaml:"root" json:"root"`

	// DSN is the SQLite database path when Kind is "sqlite".
	DSN string `yaml:"dsn" json:"dsn"`

	// BatchSize is how many files a rebuild indexes per batch.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// DebounceMS is the watcher debounce window in milliseconds.
	DebounceMS int `yaml:"debounce_ms" json:"debounce_ms"`
}

// TelemetryConfig configures search telemetry.
type TelemetryConfig struct {
	// Enabled turns the in-memory query metrics buffer on.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// BufferSize is the metrics ring buffer capacity.
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`

	// HistoryPath is the optional SQLite search-history database.
	// Empty disables persistent history.
	HistoryPath string `yaml:"history_path" json:"history_path"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	FilePath  string `yaml:"file_path" json:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Engine: EngineConfig{
			FuzzyDistance:   2,
			NodeBudget:      50000,
			PrefixCap:       500,
			MaxResults:      100,
			DecayWindowDays: 7,
			CacheSize:       256,
		},
		Snapshot: SnapshotConfig{
			Path: defaultSnapshotPath(),
		},
		Source: SourceConfig{
			Kind:       "dir",
			Root:       ".",
			BatchSize:  64,
			DebounceMS: 300,
		},
		Telemetry: TelemetryConfig{
			Enabled:    true,
			BufferSize: 1000,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// defaultSnapshotPath returns the XDG data location for the snapshot file.
func defaultSnapshotPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "filesift", "index.fsif")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "filesift", "index.fsif")
	}
	return filepath.Join(home, ".local", "share", "filesift", "index.fsif")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/filesift/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/filesift/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "filesift", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "filesift", "config.yaml")
	}
	return filepath.Join(home, ".config", "filesift", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration for the given project directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/filesift/config.yaml)
//  3. Project config (.filesift.yaml in dir)
//  4. Environment variables (FILESIFT_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .filesift.yaml or .filesift.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".filesift.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".filesift.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine - use defaults
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Engine.FuzzyDistance != 0 {
		c.Engine.FuzzyDistance = other.Engine.FuzzyDistance
	}
	if other.Engine.NodeBudget != 0 {
		c.Engine.NodeBudget = other.Engine.NodeBudget
	}
	if other.Engine.PrefixCap != 0 {
		c.Engine.PrefixCap = other.Engine.PrefixCap
	}
	if other.Engine.MaxResults != 0 {
		c.Engine.MaxResults = other.Engine.MaxResults
	}
	if other.Engine.DecayWindowDays != 0 {
		c.Engine.DecayWindowDays = other.Engine.DecayWindowDays
	}
	if other.Engine.CacheSize != 0 {
		c.Engine.CacheSize = other.Engine.CacheSize
	}

	if other.Snapshot.Path != "" {
		c.Snapshot.Path = other.Snapshot.Path
	}

	if other.Source.Kind != "" {
		c.Source.Kind = other.Source.Kind
	}
	if other.Source.Root != "" {
		c.Source.Root = other.Source.Root
	}
	if other.Source.DSN != "" {
		c.Source.DSN = other.Source.DSN
	}
	if other.Source.BatchSize != 0 {
		c.Source.BatchSize = other.Source.BatchSize
	}
	if other.Source.DebounceMS != 0 {
		c.Source.DebounceMS = other.Source.DebounceMS
	}

	if other.Telemetry.BufferSize != 0 {
		c.Telemetry.BufferSize = other.Telemetry.BufferSize
	}
	if other.Telemetry.HistoryPath != "" {
		c.Telemetry.HistoryPath = other.Telemetry.HistoryPath
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.FilePath != "" {
		c.Logging.FilePath = other.Logging.FilePath
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
}

// applyEnvOverrides applies FILESIFT_* environment variables, the highest
// precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FILESIFT_FUZZY_DISTANCE"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d >= 0 {
			c.Engine.FuzzyDistance = d
		}
	}
	if v := os.Getenv("FILESIFT_NODE_BUDGET"); v != "" {
		if b, err := strconv.Atoi(v); err == nil && b > 0 {
			c.Engine.NodeBudget = b
		}
	}
	if v := os.Getenv("FILESIFT_PREFIX_CAP"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Engine.PrefixCap = p
		}
	}
	if v := os.Getenv("FILESIFT_MAX_RESULTS"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m > 0 {
			c.Engine.MaxResults = m
		}
	}
	if v := os.Getenv("FILESIFT_DECAY_WINDOW_DAYS"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			c.Engine.DecayWindowDays = d
		}
	}
	if v := os.Getenv("FILESIFT_SNAPSHOT_PATH"); v != "" {
		c.Snapshot.Path = v
	}
	if v := os.Getenv("FILESIFT_SOURCE_KIND"); v != "" {
		c.Source.Kind = v
	}
	if v := os.Getenv("FILESIFT_SOURCE_ROOT"); v != "" {
		c.Source.Root = v
	}
	if v := os.Getenv("FILESIFT_SOURCE_DSN"); v != "" {
		c.Source.DSN = v
	}
	if v := os.Getenv("FILESIFT_TELEMETRY"); v != "" {
		c.Telemetry.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("FILESIFT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the final configuration for consistency.
func (c *Config) Validate() error {
	if c.Engine.FuzzyDistance < 0 || c.Engine.FuzzyDistance > 5 {
		return fmt.Errorf("engine.fuzzy_distance must be between 0 and 5, got %d", c.Engine.FuzzyDistance)
	}
	if c.Engine.NodeBudget <= 0 {
		return fmt.Errorf("engine.node_budget must be positive, got %d", c.Engine.NodeBudget)
	}
	if c.Engine.PrefixCap <= 0 {
		return fmt.Errorf("engine.prefix_cap must be positive, got %d", c.Engine.PrefixCap)
	}
	if c.Engine.MaxResults <= 0 {
		return fmt.Errorf("engine.max_results must be positive, got %d", c.Engine.MaxResults)
	}
	if c.Engine.DecayWindowDays <= 0 {
		return fmt.Errorf("engine.decay_window_days must be positive, got %d", c.Engine.DecayWindowDays)
	}
	if c.Engine.CacheSize < 0 {
		return fmt.Errorf("engine.cache_size must be non-negative, got %d", c.Engine.CacheSize)
	}

	validKinds := map[string]bool{"dir": true, "sqlite": true, "none": true}
	if !validKinds[strings.ToLower(c.Source.Kind)] {
		return fmt.Errorf("source.kind must be 'dir', 'sqlite', or 'none', got %s", c.Source.Kind)
	}
	if strings.ToLower(c.Source.Kind) == "sqlite" && c.Source.DSN == "" {
		return fmt.Errorf("source.dsn is required when source.kind is 'sqlite'")
	}
	if c.Source.BatchSize <= 0 {
		return fmt.Errorf("source.batch_size must be positive, got %d", c.Source.BatchSize)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
