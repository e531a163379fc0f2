package config

import "time"

// Default values for configuration fields.
const (
	// Service defaults
	DefaultService = "mercator-europa"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "mercator"
	DefaultMetricsSubsystem = "europa"

	// Tracing defaults
	DefaultTracingEnabled = false
	DefaultSampler        = "ratio"
	DefaultSampleRatio    = 0.1
	DefaultExporter       = "otlp"
	DefaultOTLPTimeout    = 10 * time.Second

	// Registry defaults
	DefaultMaxSpanAge    = 5 * time.Minute
	DefaultSweepSchedule = "* * * * *"
)

// ApplyDefaults fills in default values for any unset configuration fields.
// It modifies the configuration in place and is idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.Service == "" {
		cfg.Service = DefaultService
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}

	// Metrics defaults
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	// Tracing defaults
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultSampleRatio
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultExporter
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = cfg.Service
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	// Registry defaults
	if cfg.Registry.MaxSpanAge == 0 {
		cfg.Registry.MaxSpanAge = DefaultMaxSpanAge
	}
	if cfg.Registry.SweepSchedule == "" {
		cfg.Registry.SweepSchedule = DefaultSweepSchedule
	}
}

// DefaultConfig returns a configuration populated entirely with defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	return cfg
}
