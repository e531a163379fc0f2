package filter

import (
	"net/http"

	"mercator-hq/europa/pkg/telemetry/logging"
	"mercator-hq/europa/pkg/telemetry/metrics"
	"mercator-hq/europa/pkg/tracing"

	"go.opentelemetry.io/otel/trace"
)

// ClientFilter opens a client span when an outbound request is sent and
// finishes it when the response (or transport error) comes back. The parent
// is the ambient span of the calling context, so an outbound call made while
// serving an inbound request becomes a child of the server span. Transport
// packages both halves as an http.RoundTripper.
type ClientFilter struct {
	tracer  *tracing.Tracer
	opts    ClientOptions
	logger  *logging.Logger
	metrics *metrics.FilterMetrics
}

// NewClientFilter creates a client-side tracing filter. logger and fm may be
// nil; a nil logger falls back to the process default and a nil fm disables
// metric recording.
func NewClientFilter(tracer *tracing.Tracer, opts ClientOptions, logger *logging.Logger, fm *metrics.FilterMetrics) *ClientFilter {
	if logger == nil {
		logger = logging.Default()
	}
	return &ClientFilter{
		tracer:  tracer,
		opts:    opts,
		logger:  logger,
		metrics: fm,
	}
}

// HandleRequest starts the client span for an outbound request, injects its
// context into the request headers, and returns the request with the span
// association wired into its context. The returned request must be the one
// actually sent.
func (f *ClientFilter) HandleRequest(r *http.Request) *http.Request {
	name := r.URL.String()
	parent := f.parentContext(r)

	span := f.tracer.StartSpan(name, parent, trace.SpanKindClient)
	if f.metrics != nil {
		f.metrics.SpanStarted(metrics.SideClient, parent.IsValid())
	}

	for _, attr := range f.opts.Attributes {
		if extract, ok := clientTagExtractors[attr]; ok {
			if kv, present := extract(r); present {
				span.SetAttributes(kv)
			}
			continue
		}
		if extract, ok := clientEventExtractors[attr]; ok {
			if event, kvs, present := extract(r); present {
				span.AddEvent(event, trace.WithAttributes(kvs...))
			}
		}
	}
	logProperties(r.Context(), span, f.opts.Properties)
	f.decorate(r, span)

	f.tracer.Inject(span.SpanContext(), r.Header)

	key := tracing.NewKey()
	f.tracer.Associate(key, span)

	ctx := withClientKey(r.Context(), key)
	ctx = trace.ContextWithSpan(ctx, span)

	f.logger.DebugContext(ctx, "client span started",
		"operation", name,
		"method", r.Method,
	)

	return r.WithContext(ctx)
}

// HandleResponse finishes the client span started for this outbound
// exchange. It takes the request returned by HandleRequest; a request
// whose context carries no association (or whose span was already finished)
// is logged and ignored.
func (f *ClientFilter) HandleResponse(r *http.Request) {
	key, ok := ClientKeyFromContext(r.Context())
	if !ok {
		if f.metrics != nil {
			f.metrics.MissingAssociation(metrics.SideClient)
		}
		f.logger.DebugContext(r.Context(), "no client span associated with request",
			"method", r.Method,
			"url", r.URL.String(),
		)
		return
	}

	if !f.tracer.FinishSpan(key) {
		if f.metrics != nil {
			f.metrics.MissingAssociation(metrics.SideClient)
		}
		return
	}
	if f.metrics != nil {
		f.metrics.SpanFinished(metrics.SideClient)
	}
}

// Transport wraps a RoundTripper with both filter halves. The span is
// finished whether the round trip succeeds or returns an error. A nil base
// uses http.DefaultTransport.
func (f *ClientFilter) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &tracingTransport{filter: f, base: base}
}

// parentContext picks the parent for a new client span. The server span
// registered on the context wins; otherwise any span already on the context
// is used. No ambient span means a new trace.
func (f *ClientFilter) parentContext(r *http.Request) trace.SpanContext {
	if key, ok := ServerKeyFromContext(r.Context()); ok {
		if span, found := f.tracer.Resolve(key); found {
			return span.SpanContext()
		}
	}
	return trace.SpanContextFromContext(r.Context())
}

func (f *ClientFilter) decorate(r *http.Request, span trace.Span) {
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

type tracingTransport struct {
	filter *ClientFilter
	base   http.RoundTripper
}

// RoundTrip traces the outbound exchange. The request is cloned before
// mutation, per the RoundTripper contract.
func (t *tracingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	traced := t.filter.HandleRequest(r.Clone(r.Context()))
	resp, err := t.base.RoundTrip(traced)
	t.filter.HandleResponse(traced)
	return resp, err
}
