package tracing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"mercator-hq/europa/pkg/config"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// instrumentationName identifies spans created by this library.
const instrumentationName = "mercator-hq/europa/pkg/tracing"

// Tracer is the facade the filters trace through. It wraps an OpenTelemetry
// tracer and propagator and owns the request-to-span association registry so
// a response filter can find and finish the span its paired request filter
// opened.
//
// The propagator is held on the facade rather than installed globally, so
// embedding services keep control over their own propagation setup.
type Tracer struct {
	tracer     trace.Tracer
	provider   *sdktrace.TracerProvider
	propagator propagation.TextMapPropagator
	registry   *Registry
	enabled    bool
}

// New creates a Tracer from the given configuration. It initializes the
// OpenTelemetry SDK with the configured sampler and OTLP exporter. If tracing
// is disabled in the config, a noop tracer is returned; the filters still run
// but produce no trace data.
//
// If registry is nil, a registry without janitor or metrics is created.
//
// The tracer must be shut down when no longer needed:
//
//	defer tracer.Shutdown(context.Background())
func New(cfg *config.TracingConfig, registry *Registry) (*Tracer, error) {
	if cfg == nil {
		return nil, errors.New("tracing config is nil")
	}
	if registry == nil {
		registry = NewRegistry(&config.RegistryConfig{}, nil, nil)
	}

	t := &Tracer{
		propagator: newPropagator(),
		registry:   registry,
		enabled:    cfg.Enabled,
	}

	if !cfg.Enabled {
		t.tracer = noop.NewTracerProvider().Tracer(instrumentationName)
		return t, nil
	}

	sampler, err := createSampler(cfg.Sampler, cfg.SampleRatio)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	exporter, err := createExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	t.tracer = t.provider.Tracer(instrumentationName)

	return t, nil
}

// NewWithTracerProvider creates a Tracer backed by an externally managed
// TracerProvider. The caller retains ownership of the provider; Shutdown is
// a no-op. This is the constructor for services that already run their own
// OpenTelemetry SDK, and for tests.
func NewWithTracerProvider(tp trace.TracerProvider, registry *Registry) *Tracer {
	if registry == nil {
		registry = NewRegistry(&config.RegistryConfig{}, nil, nil)
	}
	return &Tracer{
		tracer:     tp.Tracer(instrumentationName),
		propagator: newPropagator(),
		registry:   registry,
		enabled:    true,
	}
}

// newPropagator returns the propagator used for header extraction and
// injection: W3C Trace Context plus W3C Baggage.
func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

// StartSpan starts a span with the given operation name and kind. If parent
// is a valid span context, the new span is its child; otherwise it is a root
// span starting a new trace.
func (t *Tracer) StartSpan(name string, parent trace.SpanContext, kind trace.SpanKind) trace.Span {
	ctx := context.Background()
	if parent.IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, parent)
	}
	_, span := t.tracer.Start(ctx, name, trace.WithSpanKind(kind))
	return span
}

// Extract parses propagation headers into a span context. Header lookup is
// case-insensitive and takes the first value for each name (propagation
// formats are single-valued). Malformed or absent headers yield
// (invalid, false); extraction never fails the request.
func (t *Tracer) Extract(h http.Header) (trace.SpanContext, bool) {
	ctx := t.propagator.Extract(context.Background(), propagation.HeaderCarrier(h))
	sc := trace.SpanContextFromContext(ctx)
	return sc, sc.IsValid()
}

// Inject serializes the span context into the outgoing headers. Existing
// headers are preserved; injection never fails. Invalid contexts inject
// nothing.
func (t *Tracer) Inject(sc trace.SpanContext, h http.Header) {
	if !sc.IsValid() {
		return
	}
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	t.propagator.Inject(ctx, propagation.HeaderCarrier(h))
}

// Registry returns the association registry owned by this facade.
func (t *Tracer) Registry() *Registry {
	return t.registry
}

// Associate registers an open span under the given request key.
func (t *Tracer) Associate(key Key, span trace.Span) {
	t.registry.Associate(key, span)
}

// Resolve returns the open span registered under key, if any.
func (t *Tracer) Resolve(key Key) (trace.Span, bool) {
	return t.registry.Resolve(key)
}

// FinishSpan finishes and deregisters the span registered under key.
// It reports whether a span was finished; a second call for the same key is
// a no-op returning false.
func (t *Tracer) FinishSpan(key Key) bool {
	return t.registry.Finish(key)
}

// Enabled returns whether tracing is enabled.
func (t *Tracer) Enabled() bool {
	return t.enabled
}

// Shutdown flushes any pending spans and shuts down the tracer. It should be
// called before application exit. It is a no-op for disabled tracers and
// tracers built on an external provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// createExporter creates a trace exporter based on the configuration.
func createExporter(cfg *config.TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp":
		return createOTLPExporter(cfg)
	default:
		return nil, fmt.Errorf("unsupported exporter: %s", cfg.Exporter)
	}
}

// createOTLPExporter creates an OTLP gRPC exporter.
func createOTLPExporter(cfg *config.TracingConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}

	if cfg.OTLP.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}

	if cfg.OTLP.Timeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.OTLP.Timeout))
	}

	opts = append(opts, otlptracegrpc.WithDialOption(
		grpc.WithBlock(),
	))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := otlptracegrpc.NewClient(opts...)
	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	return exporter, nil
}
