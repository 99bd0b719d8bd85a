// ABOUTME: Configuration management for tally with YAML config loading.
// ABOUTME: Handles log timestamp style, match scope, search case, and ~ expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/2389-research/tally/internal/models"
)

// Timestamp styles for the event log.
const (
	TimestampDMY = "dmy"
	TimestampISO = "iso"
)

// Match scopes for prefix-based delete and update operations.
const (
	ScopeFirst = "first"
	ScopeAll   = "all"
)

// Config stores tally configuration loaded from ~/.config/tally/config.yaml.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Records RecordsConfig `yaml:"records"`
	Search  SearchConfig  `yaml:"search"`
}

// LogConfig controls the event log format and diagnostic verbosity.
type LogConfig struct {
	Timestamp string `yaml:"timestamp"`
	Debug     bool   `yaml:"debug"`
}

// RecordsConfig controls how name-prefix operations pick their targets.
type RecordsConfig struct {
	MatchScope string `yaml:"match_scope"`
}

// SearchConfig controls keyword search matching.
type SearchConfig struct {
	CaseSensitive bool `yaml:"case_sensitive"`
}

// Default returns a config with every option at its default value.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Timestamp: TimestampDMY},
		Records: RecordsConfig{MatchScope: ScopeFirst},
	}
}

// applyDefaults fills empty fields left by a partial config file.
func (c *Config) applyDefaults() {
	if c.Log.Timestamp == "" {
		c.Log.Timestamp = TimestampDMY
	}
	if c.Records.MatchScope == "" {
		c.Records.MatchScope = ScopeFirst
	}
}

// Validate rejects unknown option values.
func (c *Config) Validate() error {
	if err := ValidateTimestampStyle(c.Log.Timestamp); err != nil {
		return err
	}
	return ValidateMatchScope(c.Records.MatchScope)
}

// ValidateTimestampStyle checks a log.timestamp value.
func ValidateTimestampStyle(style string) error {
	switch style {
	case TimestampDMY, TimestampISO:
		return nil
	}
	return fmt.Errorf("log.timestamp must be %q or %q, got %q", TimestampDMY, TimestampISO, style)
}

// ValidateMatchScope checks a records.match_scope value.
func ValidateMatchScope(scope string) error {
	switch scope {
	case ScopeFirst, ScopeAll:
		return nil
	}
	return fmt.Errorf("records.match_scope must be %q or %q, got %q", ScopeFirst, ScopeAll, scope)
}

// TimestampLayout returns the Go time layout for the configured timestamp style.
func (c *Config) TimestampLayout() string {
	if c.Log.Timestamp == TimestampISO {
		return models.TimestampISO
	}
	return models.TimestampDMY
}

// MatchAll returns true if prefix operations should affect every matching line.
func (c *Config) MatchAll() bool {
	return c.Records.MatchScope == ScopeAll
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "tally", "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
