package config

import "time"

// Config is the root configuration structure for Mercator Europa.
// It contains all configuration sections for the tracing facade, the span
// registry, and telemetry (logging and metrics).
type Config struct {
	// Service is the logical service name reported on every span.
	// Default: "mercator-europa"
	Service string `yaml:"service"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and the distributed tracing backend.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Registry contains configuration for the request-to-span association
	// registry, including orphan eviction.
	Registry RegistryConfig `yaml:"registry"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing backend configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "mercator"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: "europa"
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains distributed tracing backend configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// When false the facade uses a noop tracer; the filters still run but
	// produce no trace data.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1 (10%)
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter to use.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the trace collector endpoint.
	// Example: "localhost:4317" (OTLP gRPC)
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces. Falls back to the top-level
	// Service field when empty.
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter settings.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter settings.
type OTLPConfig struct {
	// Insecure disables TLS for the exporter connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the maximum duration for exporting a batch of spans.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// RegistryConfig contains configuration for the span association registry.
//
// The registry maps in-flight request identities to their open spans. If a
// response filter never runs (connection dropped mid-request), the entry
// would leak; the janitor sweeps entries older than MaxSpanAge on the
// SweepSchedule and finishes the orphaned spans.
type RegistryConfig struct {
	// MaxSpanAge is the maximum lifetime of an association entry before the
	// janitor treats it as orphaned. Zero disables eviction.
	// Default: 5m
	MaxSpanAge time.Duration `yaml:"max_span_age"`

	// SweepSchedule is a cron expression controlling when the janitor runs.
	// Default: "* * * * *" (every minute)
	SweepSchedule string `yaml:"sweep_schedule"`
}
