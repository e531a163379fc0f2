package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
//
// This handler exposes all registered filter metrics in the standard
// Prometheus exposition format. It should be mounted at the path specified
// in the MetricsConfig (typically "/metrics").
//
// Example:
//
//	fm := metrics.New(&cfg.Telemetry.Metrics, nil)
//	http.Handle(cfg.Telemetry.Metrics.Path, fm.Handler())
func (fm *FilterMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		fm.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}
