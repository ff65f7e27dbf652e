// Package config provides unified configuration loading for contagion.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/models"
	"gopkg.in/yaml.v3"
)

// ContagionConfig contains all contagion configuration settings.
type ContagionConfig struct {
	// Simulation holds the epidemic and network parameters.
	Simulation models.Params `json:"simulation" yaml:"simulation"`

	// Run controls how a simulation is driven.
	Run RunConfig `json:"run" yaml:"run"`

	// Logging contains settings for operational and transition logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// RunConfig controls the driver loop.
type RunConfig struct {
	// Seed makes runs reproducible. Unset draws a random seed per run.
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// MaxDays caps a run even if the outbreak is still active.
	MaxDays int `json:"max_days" yaml:"max_days"`

	// Interval is the pause between simulated days ("500ms", "1s").
	// Zero runs unpaced.
	Interval time.Duration `json:"interval" yaml:"interval"`

	// Workers is the intra-day parallelism. 0 or 1 is serial.
	Workers int `json:"workers" yaml:"workers"`
}

// LoggingConfig configures contagion's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables transition logging to transitions.jsonl in Dir.
	Level string `json:"level" yaml:"level"`

	// Dir is where transitions.jsonl is written. Empty means the
	// current directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// Default returns a ContagionConfig with sensible defaults.
func Default() *ContagionConfig {
	return &ContagionConfig{
		Simulation: models.DefaultParams(),
		Run: RunConfig{
			MaxDays: constants.DefaultMaxDays,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.contagion/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(homeDir, ".contagion", "config.yaml"), nil
}

// Load loads configuration and applies environment variable overrides.
// Order: defaults -> config file -> environment variables.
//
// With an empty path the default location is used if it exists. An
// explicit path must exist.
func Load(path string) (*ContagionConfig, error) {
	config := Default()

	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Fields the
// file omits keep their defaults.
func LoadFromFile(path string) (*ContagionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	config.Logging.Dir = os.ExpandEnv(config.Logging.Dir)

	return config, nil
}

// Validate checks that the configuration is valid. Parameter errors are
// *models.ConfigError values.
func (c *ContagionConfig) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	if c.Run.MaxDays < 0 {
		return &models.ConfigError{Field: "run.max_days", Value: c.Run.MaxDays, Reason: "must be non-negative"}
	}
	if c.Run.Interval < 0 {
		return &models.ConfigError{Field: "run.interval", Value: c.Run.Interval, Reason: "must be non-negative"}
	}
	if c.Run.Workers < 0 {
		return &models.ConfigError{Field: "run.workers", Value: c.Run.Workers, Reason: "must be non-negative"}
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// Marshal renders the configuration as YAML.
func (c *ContagionConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// applyEnvOverrides applies CONTAGION_* environment variable overrides.
// A variable that is set but cannot be parsed is an error.
func applyEnvOverrides(config *ContagionConfig) error {
	var errs []error
	envInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}

	envInt("CONTAGION_POPULATION", &config.Simulation.PopulationSize)
	envInt("CONTAGION_INITIAL_INFECTIONS", &config.Simulation.InitialInfections)
	envInt("CONTAGION_EXPOSED_DAYS", &config.Simulation.ExposedDays)
	envInt("CONTAGION_RECOVERY_DAYS", &config.Simulation.RecoveryDays)
	envInt("CONTAGION_CONNECTIONS", &config.Simulation.ConnectionsPerPerson)
	envInt("CONTAGION_COMMUNITIES", &config.Simulation.CommunityCount)
	envInt("CONTAGION_MAX_DAYS", &config.Run.MaxDays)
	envInt("CONTAGION_WORKERS", &config.Run.Workers)

	if v := os.Getenv("CONTAGION_TRANSMISSION_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err != nil {
			errs = append(errs, fmt.Errorf("CONTAGION_TRANSMISSION_RATE: %w", err))
		} else {
			config.Simulation.TransmissionRate = f
		}
	}

	if v := os.Getenv("CONTAGION_SEED"); v != "" {
		if s, err := strconv.ParseUint(v, 10, 64); err != nil {
			errs = append(errs, fmt.Errorf("CONTAGION_SEED: %w", err))
		} else {
			config.Run.Seed = &s
		}
	}

	if v := os.Getenv("CONTAGION_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("CONTAGION_INTERVAL: %w", err))
		} else {
			config.Run.Interval = d
		}
	}

	if v := os.Getenv("CONTAGION_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}
