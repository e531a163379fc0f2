package filter

import (
	"net/http"

	"mercator-hq/europa/pkg/telemetry/logging"
	"mercator-hq/europa/pkg/telemetry/metrics"
	"mercator-hq/europa/pkg/tracing"

	"go.opentelemetry.io/otel/trace"
)

// ServerFilter opens a server span when a request arrives and finishes it
// when the response leaves. The two halves are paired through the tracer's
// association registry, so they also work when wired into frameworks that
// run request and response interception at separate points. Middleware
// combines both halves for plain net/http handler chains.
type ServerFilter struct {
	tracer  *tracing.Tracer
	opts    ServerOptions
	logger  *logging.Logger
	metrics *metrics.FilterMetrics
}

// NewServerFilter creates a server-side tracing filter. logger and fm may be
// nil; a nil logger falls back to the process default and a nil fm disables
// metric recording.
func NewServerFilter(tracer *tracing.Tracer, opts ServerOptions, logger *logging.Logger, fm *metrics.FilterMetrics) *ServerFilter {
	if logger == nil {
		logger = logging.Default()
	}
	return &ServerFilter{
		tracer:  tracer,
		opts:    opts,
		logger:  logger,
		metrics: fm,
	}
}

// HandleRequest starts the server span for an inbound request and returns
// the request with the span association and the span itself wired into its
// context. The returned request must be used for the remainder of the
// exchange.
//
// Propagation headers on the request parent the new span; absent or
// malformed headers start a new trace instead. HandleRequest never rejects
// a request.
func (f *ServerFilter) HandleRequest(r *http.Request) *http.Request {
	name := f.operationName(r)

	parent, ok := f.tracer.Extract(r.Header)
	if !ok && r.Header.Get("traceparent") != "" {
		if f.metrics != nil {
			f.metrics.ExtractFallback()
		}
		f.logger.DebugContext(r.Context(), "unparseable propagation headers, starting new trace",
			"operation", name,
		)
	}

	span := f.tracer.StartSpan(name, parent, trace.SpanKindServer)
	if f.metrics != nil {
		f.metrics.SpanStarted(metrics.SideServer, parent.IsValid())
	}

	for _, attr := range f.opts.Attributes {
		extract, known := serverExtractors[attr]
		if !known {
			continue
		}
		if kv, present := extract(r); present {
			span.SetAttributes(kv)
		}
	}
	logProperties(r.Context(), span, f.opts.Properties)
	f.decorate(r, span)

	key := tracing.NewKey()
	f.tracer.Associate(key, span)

	ctx := withServerKey(r.Context(), key)
	ctx = trace.ContextWithSpan(ctx, span)
	ctx = logging.WithOperation(ctx, name)

	f.logger.DebugContext(ctx, "server span started",
		"operation", name,
		"method", r.Method,
		"path", r.URL.Path,
	)

	return r.WithContext(ctx)
}

// HandleResponse finishes the server span started for this exchange. It
// takes the request returned by HandleRequest; a request whose context
// carries no association (or whose span was already finished) is logged and
// ignored.
func (f *ServerFilter) HandleResponse(r *http.Request) {
	key, ok := ServerKeyFromContext(r.Context())
	if !ok {
		if f.metrics != nil {
			f.metrics.MissingAssociation(metrics.SideServer)
		}
		f.logger.DebugContext(r.Context(), "no server span associated with request",
			"method", r.Method,
			"path", r.URL.Path,
		)
		return
	}

	if !f.tracer.FinishSpan(key) {
		if f.metrics != nil {
			f.metrics.MissingAssociation(metrics.SideServer)
		}
		return
	}
	if f.metrics != nil {
		f.metrics.SpanFinished(metrics.SideServer)
	}
}

// Middleware wraps a handler with both filter halves. The span is finished
// after the handler returns, including on panic.
func (f *ServerFilter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traced := f.HandleRequest(r)
		defer f.HandleResponse(traced)
		next.ServeHTTP(w, traced)
	})
}

func (f *ServerFilter) operationName(r *http.Request) string {
	if f.opts.OperationName != "" {
		return f.opts.OperationName
	}
	return absoluteURL(r).String()
}

// decorate runs the configured decorator, recovering a panic so a faulty
// decorator cannot abort the request or leak the span.
func (f *ServerFilter) decorate(r *http.Request, span trace.Span) {
	if f.opts.Decorator == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			f.logger.DebugContext(r.Context(), "span decorator panicked",
				"panic", rec,
			)
		}
	}()
	f.opts.Decorator(r, span)
}
