// Package metrics provides Prometheus metrics for the tracing filters.
//
// FilterMetrics counts spans started and finished per side, extraction
// fallbacks, missing associations on response, and registry orphan evictions,
// and gauges the number of in-flight span associations. All metrics register
// against an injectable *prometheus.Registry so host services can merge them
// into their own exposition endpoint:
//
//	fm := metrics.New(&cfg.Telemetry.Metrics, myRegistry)
//	http.Handle("/metrics", fm.Handler())
//
// Every failure path the filters recover from (malformed propagation headers,
// a response with no registered span) surfaces here rather than as an
// application error, so degraded tracing fidelity stays observable.
package metrics
