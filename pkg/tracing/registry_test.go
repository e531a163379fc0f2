package tracing

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"mercator-hq/europa/pkg/config"

	"go.opentelemetry.io/otel/trace"
)

func newTestRegistry(maxAge time.Duration) *Registry {
	return NewRegistry(&config.RegistryConfig{
		MaxSpanAge:    maxAge,
		SweepSchedule: "* * * * *",
	}, nil, nil)
}

func TestRegistry_AssociateResolveFinish(t *testing.T) {
	tracer, sr := newTestTracer(t)
	reg := newTestRegistry(time.Minute)

	key := NewKey()
	span := tracer.StartSpan("op", trace.SpanContext{}, trace.SpanKindServer)
	reg.Associate(key, span)

	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}

	got, ok := reg.Resolve(key)
	if !ok {
		t.Fatal("expected to resolve registered span")
	}
	if !got.SpanContext().Equal(span.SpanContext()) {
		t.Error("resolved span differs from registered span")
	}

	if !reg.Finish(key) {
		t.Fatal("first Finish must report true")
	}
	if len(sr.Ended()) != 1 {
		t.Fatalf("expected span ended after Finish, got %d ended spans", len(sr.Ended()))
	}

	if _, ok := reg.Resolve(key); ok {
		t.Error("finished key must not resolve")
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after finish, want 0", reg.Len())
	}
}

func TestRegistry_DoubleFinish(t *testing.T) {
	tracer, sr := newTestTracer(t)
	reg := newTestRegistry(time.Minute)

	key := NewKey()
	reg.Associate(key, tracer.StartSpan("op", trace.SpanContext{}, trace.SpanKindServer))

	if !reg.Finish(key) {
		t.Fatal("first Finish must report true")
	}
	if reg.Finish(key) {
		t.Error("second Finish must be a no-op reporting false")
	}
	if len(sr.Ended()) != 1 {
		t.Errorf("span must end exactly once, got %d ended spans", len(sr.Ended()))
	}
}

func TestRegistry_FinishUnknownKey(t *testing.T) {
	reg := newTestRegistry(time.Minute)

	if reg.Finish(NewKey()) {
		t.Error("Finish for an unknown key must report false")
	}
}

func TestRegistry_ReassociateReplacesEntry(t *testing.T) {
	tracer, sr := newTestTracer(t)
	reg := newTestRegistry(time.Minute)

	key := NewKey()
	first := tracer.StartSpan("first", trace.SpanContext{}, trace.SpanKindServer)
	second := tracer.StartSpan("second", trace.SpanContext{}, trace.SpanKindServer)

	reg.Associate(key, first)
	reg.Associate(key, second)

	// Replacement finishes the displaced span so it cannot leak.
	if len(sr.Ended()) != 1 || sr.Ended()[0].Name() != "first" {
		t.Fatalf("expected displaced span %q ended, got %d ended", "first", len(sr.Ended()))
	}

	got, ok := reg.Resolve(key)
	if !ok || !got.SpanContext().Equal(second.SpanContext()) {
		t.Error("key must resolve to the replacement span")
	}
}

func TestRegistry_ConcurrentExchanges(t *testing.T) {
	tracer, _ := newTestTracer(t)
	reg := newTestRegistry(time.Minute)

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()

			key := Key(fmt.Sprintf("exchange-%d", i))
			span := tracer.StartSpan(fmt.Sprintf("op-%d", i), trace.SpanContext{}, trace.SpanKindServer)

			reg.Associate(key, span)
			if _, ok := reg.Resolve(key); !ok {
				t.Errorf("exchange %d: span not resolvable after associate", i)
			}
			if !reg.Finish(key) {
				t.Errorf("exchange %d: Finish reported false", i)
			}
		}(i)
	}

	wg.Wait()

	if reg.Len() != 0 {
		t.Errorf("Len() = %d after all exchanges finished, want 0", reg.Len())
	}
}

func TestRegistry_SweepEvictsOrphans(t *testing.T) {
	tracer, sr := newTestTracer(t)
	reg := newTestRegistry(10 * time.Millisecond)

	orphan := NewKey()
	reg.Associate(orphan, tracer.StartSpan("orphan", trace.SpanContext{}, trace.SpanKindServer))

	time.Sleep(20 * time.Millisecond)

	fresh := NewKey()
	reg.Associate(fresh, tracer.StartSpan("fresh", trace.SpanContext{}, trace.SpanKindServer))

	if evicted := reg.sweep(); evicted != 1 {
		t.Fatalf("sweep() = %d, want 1", evicted)
	}

	if _, ok := reg.Resolve(orphan); ok {
		t.Error("orphaned entry must be evicted")
	}
	if _, ok := reg.Resolve(fresh); !ok {
		t.Error("fresh entry must survive the sweep")
	}
	if len(sr.Ended()) != 1 || sr.Ended()[0].Name() != "orphan" {
		t.Errorf("expected the orphaned span ended by the sweep")
	}
}

func TestRegistry_JanitorLifecycle(t *testing.T) {
	reg := newTestRegistry(time.Minute)

	if err := reg.StartJanitor(); err != nil {
		t.Fatalf("StartJanitor() error = %v", err)
	}
	reg.StopJanitor()

	// Disabled eviction: janitor start is a no-op, not an error.
	disabled := NewRegistry(&config.RegistryConfig{}, nil, nil)
	if err := disabled.StartJanitor(); err != nil {
		t.Errorf("StartJanitor() with eviction disabled: %v", err)
	}

	// Invalid schedule surfaces as an error.
	bad := NewRegistry(&config.RegistryConfig{
		MaxSpanAge:    time.Minute,
		SweepSchedule: "not-cron",
	}, nil, nil)
	if err := bad.StartJanitor(); err == nil {
		t.Error("expected error for invalid sweep schedule")
	}
}
