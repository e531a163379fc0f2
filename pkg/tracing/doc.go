// Package tracing provides the tracing facade the request filters trace
// through: span creation, W3C trace context propagation, and the
// request-to-span association registry.
//
// # Facade
//
// Tracer wraps an OpenTelemetry tracer and propagator behind the four
// operations the filters need:
//
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing, registry)
//	defer tracer.Shutdown(context.Background())
//
//	parent, ok := tracer.Extract(r.Header)          // inbound headers → span context
//	span := tracer.StartSpan(name, parent, kind)    // child when parent valid, else root
//	tracer.Inject(span.SpanContext(), req.Header)   // span context → outbound headers
//	tracer.FinishSpan(key)                          // paired response filter
//
// Extraction is fail-open: malformed propagation headers yield an invalid
// context and the caller starts a root span instead. Tracing never blocks or
// fails a request.
//
// # Association Registry
//
// Registry maps in-flight request identities (opaque keys) to their open
// spans so the response filter of the same exchange can find and finish the
// span its request filter opened. It supports concurrent insert and lookup
// from independent request goroutines; removal for a key happens exactly
// once, and a double finish is a no-op.
//
// If a response filter never runs, the entry would leak. The registry's
// janitor runs on a cron schedule and finishes entries older than the
// configured max age:
//
//	registry:
//	  max_span_age: 5m
//	  sweep_schedule: "* * * * *"
//
// # Propagation
//
// The propagator is a composite of W3C Trace Context and W3C Baggage, held
// on the facade rather than installed as the global OpenTelemetry propagator.
// Header lookup is case-insensitive and single-valued (first value wins),
// which is what the propagation formats expect.
package tracing
