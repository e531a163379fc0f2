package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention EUROPA_SECTION_FIELD (e.g., EUROPA_TRACING_ENDPOINT).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format EUROPA_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("EUROPA_SERVICE"); val != "" {
		cfg.Service = val
	}

	// Logging overrides
	if val := os.Getenv("EUROPA_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("EUROPA_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}

	// Metrics overrides
	if val := os.Getenv("EUROPA_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("EUROPA_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}

	// Tracing overrides
	if val := os.Getenv("EUROPA_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("EUROPA_TRACING_SAMPLER"); val != "" {
		cfg.Telemetry.Tracing.Sampler = val
	}
	if val := os.Getenv("EUROPA_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
	if val := os.Getenv("EUROPA_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("EUROPA_TRACING_SERVICE_NAME"); val != "" {
		cfg.Telemetry.Tracing.ServiceName = val
	}

	// Registry overrides
	if val := os.Getenv("EUROPA_REGISTRY_MAX_SPAN_AGE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Registry.MaxSpanAge = d
		}
	}
	if val := os.Getenv("EUROPA_REGISTRY_SWEEP_SCHEDULE"); val != "" {
		cfg.Registry.SweepSchedule = val
	}
}
