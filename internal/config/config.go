// Package config provides unified configuration loading for cogsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config contains all cogsim configuration settings.
type Config struct {
	// Engine contains settings for the execution drivers.
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Trace contains settings for tick trace recording.
	Trace TraceConfig `json:"trace" yaml:"trace"`

	// Logging contains settings for operational and tick logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// EngineConfig configures the execution drivers.
type EngineConfig struct {
	// Workers is the size of the evaluation worker pool for the
	// concurrent driver. 0 means runtime.NumCPU().
	Workers int `json:"workers" yaml:"workers"`

	// Sequential selects the sequential driver instead of the
	// concurrent one. Sequential execution interleaves read, evaluate
	// and write per module, so same-tick dependency chains resolve
	// within a single tick.
	Sequential bool `json:"sequential" yaml:"sequential"`
}

// TraceConfig configures tick trace recording.
type TraceConfig struct {
	// Enabled turns on per-tick activation recording to SQLite.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the trace database file. Defaults to .cogsim/trace.db
	// relative to the working directory.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoggingConfig configures cogsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables tick logging to .cogsim/ticks.jsonl.
	// "trace" additionally includes per-cogxel activation content.
	Level string `json:"level" yaml:"level"`
}

// EffectiveWorkers resolves the worker count, substituting the CPU
// count when unset.
func (c EngineConfig) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Workers:    0,
			Sequential: false,
		},
		Trace: TraceConfig{
			Enabled: false,
			Path:    filepath.Join(".cogsim", "trace.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.cogsim/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	// Try to load from default config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".cogsim", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Engine.Workers)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("COGSIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Engine.Workers = n
		}
	}

	if v := os.Getenv("COGSIM_SEQUENTIAL"); v != "" {
		config.Engine.Sequential = v == "true" || v == "1"
	}

	if v := os.Getenv("COGSIM_TRACE_ENABLED"); v != "" {
		config.Trace.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("COGSIM_TRACE_PATH"); v != "" {
		config.Trace.Path = v
	}

	if v := os.Getenv("COGSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
