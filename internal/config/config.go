// Package config provides unified configuration loading for reflex.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/luminathea/reflex/internal/constants"
	"gopkg.in/yaml.v3"
)

// DefaultEvaluateEvery is the default tick cadence for automatic
// level evaluation inside the engine.
const DefaultEvaluateEvery = 25

// Config contains all reflex configuration settings.
type Config struct {
	// DataDir is the state directory. Empty means ~/.reflex.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`

	// Backend selects the persistence backend: "file" (default),
	// "sqlite", or "memory".
	Backend string `json:"backend" yaml:"backend"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store contains pattern store settings.
	Store StoreConfig `json:"store" yaml:"store"`

	// Autonomy contains autonomy controller settings.
	Autonomy AutonomyConfig `json:"autonomy" yaml:"autonomy"`
}

// LoggingConfig configures reflex's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "trace", "debug", "info" (default),
	// "warn", or "error".
	Level string `json:"level" yaml:"level"`

	// DecisionLog enables the JSONL decision trace written to
	// decisions.jsonl under the data dir.
	DecisionLog bool `json:"decision_log" yaml:"decision_log"`
}

// StoreConfig configures the pattern store.
type StoreConfig struct {
	// Capacity is the pattern count the store tries to stay under.
	// Seeds and trial patterns are never evicted, so the store may
	// temporarily exceed it.
	Capacity int `json:"capacity" yaml:"capacity"`

	// SeedOnEmpty installs the seed catalog when the store loads empty.
	SeedOnEmpty bool `json:"seed_on_empty" yaml:"seed_on_empty"`
}

// AutonomyConfig configures the autonomy controller.
type AutonomyConfig struct {
	// AuditInterval is the tick distance between quality audits.
	AuditInterval int `json:"audit_interval" yaml:"audit_interval"`

	// EvaluateEvery is how many decide calls pass between automatic
	// level evaluations.
	EvaluateEvery int `json:"evaluate_every" yaml:"evaluate_every"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DataDir: "",
		Backend: "file",
		Logging: LoggingConfig{
			Level:       "info",
			DecisionLog: false,
		},
		Store: StoreConfig{
			Capacity:    constants.MaxPatterns,
			SeedOnEmpty: true,
		},
		Autonomy: AutonomyConfig{
			AuditInterval: constants.AuditInterval,
			EvaluateEvery: DefaultEvaluateEvery,
		},
	}
}

// Load builds the effective configuration. Precedence, lowest to
// highest: built-in defaults, ~/.reflex/config.yaml if present, then
// REFLEX_* environment variables.
func Load() (*Config, error) {
	config := Default()

	if homeDir, err := os.UserHomeDir(); err == nil {
		configPath := filepath.Join(homeDir, ".reflex", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("failed to load %s: %w", configPath, loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile reads one YAML config file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	validBackends := map[string]bool{"": true, "file": true, "sqlite": true, "memory": true}
	if !validBackends[c.Backend] {
		return fmt.Errorf("invalid backend: %s (valid: file, sqlite, memory, or empty for default)", c.Backend)
	}

	validLevels := map[string]bool{"": true, "trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: trace, debug, info, warn, error, or empty for default)", c.Logging.Level)
	}

	if c.Store.Capacity <= 0 {
		return fmt.Errorf("store capacity must be positive, got %d", c.Store.Capacity)
	}

	if c.Autonomy.AuditInterval <= 0 {
		return fmt.Errorf("audit_interval must be positive, got %d", c.Autonomy.AuditInterval)
	}

	if c.Autonomy.EvaluateEvery <= 0 {
		return fmt.Errorf("evaluate_every must be positive, got %d", c.Autonomy.EvaluateEvery)
	}

	return nil
}

// applyEnvOverrides lets REFLEX_* variables win over file values.
// Unparseable numeric values leave the existing value in place.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("REFLEX_DATA_DIR"); v != "" {
		config.DataDir = v
	}

	if v := os.Getenv("REFLEX_BACKEND"); v != "" {
		config.Backend = v
	}

	if v := os.Getenv("REFLEX_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("REFLEX_DECISION_LOG"); v != "" {
		config.Logging.DecisionLog = v == "true" || v == "1"
	}

	if v := os.Getenv("REFLEX_STORE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Store.Capacity = n
		}
	}

	if v := os.Getenv("REFLEX_SEED_ON_EMPTY"); v != "" {
		config.Store.SeedOnEmpty = v == "true" || v == "1"
	}

	if v := os.Getenv("REFLEX_AUDIT_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Autonomy.AuditInterval = n
		}
	}

	if v := os.Getenv("REFLEX_EVALUATE_EVERY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Autonomy.EvaluateEvery = n
		}
	}
}
