package filter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/europa/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracer(t *testing.T) (*tracing.Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Errorf("shutdown tracer provider: %v", err)
		}
	})
	return tracing.NewWithTracerProvider(tp, nil), recorder
}

func findAttr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestServerFilterRootSpan(t *testing.T) {
	tracer, recorder := newTestTracer(t)
	filter := NewServerFilter(tracer, ServerOptions{
		Attributes: []ServerAttribute{ServerMethod, ServerURI},
	}, nil, nil)

	handler := filter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/orders/42", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 finished span, got %d", len(ended))
	}
	span := ended[0]

	if span.Name() != "http://api.example.com/orders/42" {
		t.Errorf("unexpected span name %q", span.Name())
	}
	if span.SpanKind() != trace.SpanKindServer {
		t.Errorf("expected server span kind, got %v", span.SpanKind())
	}
	if span.Parent().IsValid() {
		t.Error("expected a root span, got a child")
	}

	method, ok := findAttr(span.Attributes(), "Method")
	if !ok || method.AsString() != http.MethodGet {
		t.Errorf("expected Method tag GET, got %v (present=%v)", method.AsString(), ok)
	}
	uri, ok := findAttr(span.Attributes(), "URI")
	if !ok || uri.AsString() != "http://api.example.com/orders/42" {
		t.Errorf("expected URI tag, got %v (present=%v)", uri.AsString(), ok)
	}
	if _, ok := findAttr(span.Attributes(), "Path"); ok {
		t.Error("Path was not selected but got tagged")
	}
}

func TestServerFilterContinuesTrace(t *testing.T) {
	tracer, recorder := newTestTracer(t)
	filter := NewServerFilter(tracer, ServerOptions{}, nil, nil)

	handler := filter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 finished span, got %d", len(ended))
	}
	span := ended[0]

	if !span.Parent().IsValid() {
		t.Fatal("expected a child span continuing the inbound trace")
	}
	if got := span.SpanContext().TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("span did not continue the inbound trace, trace id %s", got)
	}
	if got := span.Parent().SpanID().String(); got != "00f067aa0ba902b7" {
		t.Errorf("unexpected parent span id %s", got)
	}
}

func TestServerFilterMalformedHeadersStartNewTrace(t *testing.T) {
	tracer, recorder := newTestTracer(t)
	filter := NewServerFilter(tracer, ServerOptions{}, nil, nil)

	handler := filter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	req.Header.Set("traceparent", "not-a-traceparent")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 finished span, got %d", len(ended))
	}
	if ended[0].Parent().IsValid() {
		t.Error("malformed headers should start a new trace, got a child span")
	}
}

func TestServerFilterOperationNameOverride(t *testing.T) {
	tracer, recorder := newTestTracer(t)
	filter := NewServerFilter(tracer, ServerOptions{
		OperationName: "get orders",
	}, nil, nil)

	traced := filter.HandleRequest(httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	filter.HandleResponse(traced)

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 finished span, got %d", len(ended))
	}
	if ended[0].Name() != "get orders" {
		t.Errorf("unexpected span name %q", ended[0].Name())
	}
}

func TestServerFilterDoubleResponseFinishesOnce(t *testing.T) {
	tracer, recorder := newTestTracer(t)
	filter := NewServerFilter(tracer, ServerOptions{}, nil, nil)

	traced := filter.HandleRequest(httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	filter.HandleResponse(traced)
	filter.HandleResponse(traced)

	if got := len(recorder.Ended()); got != 1 {
		t.Errorf("span finished %d times, want 1", got)
	}
}

func TestServerFilterResponseWithoutRequest(t *testing.T) {
	tracer, recorder := newTestTracer(t)
	filter := NewServerFilter(tracer, ServerOptions{}, nil, nil)

	// Never passed through HandleRequest, so no association exists.
	filter.HandleResponse(httptest.NewRequest(http.MethodGet, "/orders/42", nil))

	if got := len(recorder.Ended()); got != 0 {
		t.Errorf("expected no finished spans, got %d", got)
	}
}

func TestServerFilterPropertyEvents(t *testing.T) {
	tracer, recorder := newTestTracer(t)
	filter := NewServerFilter(tracer, ServerOptions{
		Properties: []string{"request-id", "tenant"},
	}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	req = req.WithContext(WithProperty(req.Context(), "request-id", "abc-123"))

	traced := filter.HandleRequest(req)
	filter.HandleResponse(traced)

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 finished span, got %d", len(ended))
	}
	events := ended[0].Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 property event, got %d", len(events))
	}
	if events[0].Name != "request-id" {
		t.Errorf("unexpected event name %q", events[0].Name)
	}
	value, ok := findAttr(events[0].Attributes, "request-id")
	if !ok || value.AsString() != "abc-123" {
		t.Errorf("unexpected event value %v (present=%v)", value.AsString(), ok)
	}
}

func TestServerFilterDecorator(t *testing.T) {
	t.Run("applies", func(t *testing.T) {
		tracer, recorder := newTestTracer(t)
		filter := NewServerFilter(tracer, ServerOptions{
			Decorator: func(r *http.Request, span trace.Span) {
				span.SetAttributes(attribute.String("decorated", r.Method))
			},
		}, nil, nil)

		traced := filter.HandleRequest(httptest.NewRequest(http.MethodGet, "/orders/42", nil))
		filter.HandleResponse(traced)

		ended := recorder.Ended()
		if len(ended) != 1 {
			t.Fatalf("expected 1 finished span, got %d", len(ended))
		}
		if v, ok := findAttr(ended[0].Attributes(), "decorated"); !ok || v.AsString() != http.MethodGet {
			t.Errorf("decorator attribute missing or wrong: %v (present=%v)", v.AsString(), ok)
		}
	})

	t.Run("panic is swallowed", func(t *testing.T) {
		tracer, recorder := newTestTracer(t)
		filter := NewServerFilter(tracer, ServerOptions{
			Decorator: func(r *http.Request, span trace.Span) {
				panic("broken decorator")
			},
		}, nil, nil)

		traced := filter.HandleRequest(httptest.NewRequest(http.MethodGet, "/orders/42", nil))
		filter.HandleResponse(traced)

		if got := len(recorder.Ended()); got != 1 {
			t.Errorf("span finished %d times despite decorator panic, want 1", got)
		}
	})
}

func TestServerFilterMiddlewareFinishesOnPanic(t *testing.T) {
	tracer, recorder := newTestTracer(t)
	filter := NewServerFilter(tracer, ServerOptions{}, nil, nil)

	handler := filter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	func() {
		defer func() { _ = recover() }()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	}()

	if got := len(recorder.Ended()); got != 1 {
		t.Errorf("expected span to be finished on handler panic, got %d finished", got)
	}
}
