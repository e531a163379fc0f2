// Package config provides configuration loading, validation, and hot reload
// for Mercator Europa.
//
// Configuration is loaded from a YAML file, filled in with defaults, and
// validated before use:
//
//	cfg, err := config.LoadConfig("europa.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration Sections
//
// The root configuration has three sections:
//
//	service: mercator-europa
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//	    path: /metrics
//	  tracing:
//	    enabled: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//	    exporter: otlp
//	    endpoint: localhost:4317
//	registry:
//	  max_span_age: 5m
//	  sweep_schedule: "* * * * *"
//
// # Environment Overrides
//
// LoadConfigWithEnvOverrides applies environment variables of the form
// EUROPA_SECTION_FIELD after file loading:
//
//	EUROPA_TRACING_ENABLED=true
//	EUROPA_TRACING_ENDPOINT=collector:4317
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and invokes a
// callback with each successfully reloaded configuration. Filter options are
// immutable once constructed; hot reload is for host services that want to
// rebuild their telemetry stack on change:
//
//	w, _ := config.NewWatcher("europa.yaml", logger)
//	go w.Watch(ctx, func(cfg *config.Config) { rebuild(cfg) })
//
// Invalid reloaded configurations are logged and discarded; the previous
// configuration stays in effect.
package config
