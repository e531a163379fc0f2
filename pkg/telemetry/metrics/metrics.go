package metrics

import (
	"mercator-hq/europa/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Side labels distinguish server-side and client-side filter metrics.
const (
	SideServer = "server"
	SideClient = "client"
)

// FilterMetrics tracks metrics for the tracing filters and the span registry.
//
// Metrics:
//   - mercator_europa_spans_started_total: Spans started by side and parentage
//   - mercator_europa_spans_finished_total: Spans finished by side
//   - mercator_europa_extract_fallbacks_total: Context extractions that fell back to a root span
//   - mercator_europa_missing_associations_total: Response filters that found no span to finish
//   - mercator_europa_orphaned_spans_total: Registry entries evicted by the janitor
//   - mercator_europa_active_associations: Currently registered in-flight spans
type FilterMetrics struct {
	// Spans started, labeled by side (server/client) and parentage (root/child)
	spansStarted *prometheus.CounterVec

	// Spans finished, labeled by side
	spansFinished *prometheus.CounterVec

	// Extractions that degraded to a root span
	extractFallbacks prometheus.Counter

	// Response-filter lookups that found nothing to finish
	missingAssociations *prometheus.CounterVec

	// Entries evicted by the registry janitor
	orphanedSpans prometheus.Counter

	// Currently registered associations
	activeAssociations prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers filter metrics with the provided registry.
// If registry is nil, a new one is created.
func New(cfg *config.MetricsConfig, registry *prometheus.Registry) *FilterMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	fm := &FilterMetrics{
		spansStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "spans_started_total",
				Help:      "Total number of spans started by the tracing filters",
			},
			[]string{"side", "parentage"},
		),

		spansFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "spans_finished_total",
				Help:      "Total number of spans finished by the response filters",
			},
			[]string{"side"},
		),

		extractFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "extract_fallbacks_total",
				Help:      "Context extractions that degraded to starting a root span",
			},
		),

		missingAssociations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "missing_associations_total",
				Help:      "Response filters that found no registered span to finish",
			},
			[]string{"side"},
		),

		orphanedSpans: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "orphaned_spans_total",
				Help:      "Association entries evicted by the registry janitor",
			},
		),

		activeAssociations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "active_associations",
				Help:      "Currently registered in-flight span associations",
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		fm.spansStarted,
		fm.spansFinished,
		fm.extractFallbacks,
		fm.missingAssociations,
		fm.orphanedSpans,
		fm.activeAssociations,
	)

	return fm
}

// SpanStarted records a started span. Parentage is "root" or "child".
func (fm *FilterMetrics) SpanStarted(side string, child bool) {
	parentage := "root"
	if child {
		parentage = "child"
	}
	fm.spansStarted.WithLabelValues(side, parentage).Inc()
}

// SpanFinished records a finished span.
func (fm *FilterMetrics) SpanFinished(side string) {
	fm.spansFinished.WithLabelValues(side).Inc()
}

// ExtractFallback records a context extraction that fell back to a root span.
func (fm *FilterMetrics) ExtractFallback() {
	fm.extractFallbacks.Inc()
}

// MissingAssociation records a response filter that found no span to finish.
func (fm *FilterMetrics) MissingAssociation(side string) {
	fm.missingAssociations.WithLabelValues(side).Inc()
}

// OrphanEvicted records association entries evicted by the janitor.
func (fm *FilterMetrics) OrphanEvicted(count int) {
	fm.orphanedSpans.Add(float64(count))
}

// AssociationOpened increments the active association gauge.
func (fm *FilterMetrics) AssociationOpened() {
	fm.activeAssociations.Inc()
}

// AssociationClosed decrements the active association gauge.
func (fm *FilterMetrics) AssociationClosed() {
	fm.activeAssociations.Dec()
}

// Registry returns the underlying Prometheus registry.
func (fm *FilterMetrics) Registry() *prometheus.Registry {
	return fm.registry
}
