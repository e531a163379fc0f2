package tracing

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/europa/pkg/config"
	"mercator-hq/europa/pkg/telemetry/metrics"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
)

// Key identifies one in-flight request/response exchange in the registry.
// Keys are opaque; NewKey returns a fresh unique key.
type Key string

// NewKey returns a new unique association key.
func NewKey() Key {
	return Key(uuid.NewString())
}

type entry struct {
	span       trace.Span
	insertedAt time.Time
}

// Registry is the association table mapping in-flight request identities to
// their open spans. It is the only shared mutable state in the filter layer
// and is safe for concurrent use across independent exchanges.
//
// Entries are removed exactly once: Finish deregisters and ends the span, and
// a second Finish for the same key is a no-op. If a response filter never
// runs (connection dropped mid-request), the entry would leak; the janitor
// sweeps entries older than the configured max age on a cron schedule and
// finishes the orphaned spans.
type Registry struct {
	mu      sync.RWMutex
	entries map[Key]entry

	maxAge   time.Duration
	schedule string

	janitor *cron.Cron
	fm      *metrics.FilterMetrics
	logger  *slog.Logger
}

// NewRegistry creates an association registry. Metrics and logger are
// optional; pass nil to disable them. The janitor is not started until
// StartJanitor is called.
func NewRegistry(cfg *config.RegistryConfig, fm *metrics.FilterMetrics, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries:  make(map[Key]entry),
		maxAge:   cfg.MaxSpanAge,
		schedule: cfg.SweepSchedule,
		fm:       fm,
		logger:   logger.With("component", "tracing.registry"),
	}
}

// Associate registers an open span under the given key. Re-associating an
// existing key replaces the entry; the previous span is finished so it cannot
// leak.
func (r *Registry) Associate(key Key, span trace.Span) {
	r.mu.Lock()
	prev, existed := r.entries[key]
	r.entries[key] = entry{span: span, insertedAt: time.Now()}
	r.mu.Unlock()

	if existed {
		prev.span.End()
		r.logger.Debug("replaced existing span association", "key", string(key))
		return
	}
	if r.fm != nil {
		r.fm.AssociationOpened()
	}
}

// Resolve returns the open span registered under key, if any.
func (r *Registry) Resolve(key Key) (trace.Span, bool) {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return e.span, true
}

// Finish deregisters and ends the span registered under key. It reports
// whether a span was finished; a Finish for an unknown or already-finished
// key is a no-op returning false.
func (r *Registry) Finish(key Key) bool {
	r.mu.Lock()
	e, ok := r.entries[key]
	if ok {
		delete(r.entries, key)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	e.span.End()
	if r.fm != nil {
		r.fm.AssociationClosed()
	}
	return true
}

// Len returns the number of registered associations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// StartJanitor starts the cron-scheduled orphan sweep. It is a no-op when
// eviction is disabled (zero max age or empty schedule).
func (r *Registry) StartJanitor() error {
	if r.maxAge <= 0 || r.schedule == "" {
		r.logger.Info("registry janitor disabled")
		return nil
	}

	r.janitor = cron.New()
	if _, err := r.janitor.AddFunc(r.schedule, func() {
		if evicted := r.sweep(); evicted > 0 {
			r.logger.Warn("evicted orphaned span associations",
				"count", evicted,
				"max_age", r.maxAge.String(),
			)
		}
	}); err != nil {
		r.janitor = nil
		return fmt.Errorf("invalid sweep schedule %q: %w", r.schedule, err)
	}

	r.janitor.Start()
	r.logger.Info("registry janitor started",
		"schedule", r.schedule,
		"max_age", r.maxAge.String(),
	)
	return nil
}

// StopJanitor stops the janitor and waits for a running sweep to complete.
func (r *Registry) StopJanitor() {
	if r.janitor == nil {
		return
	}
	ctx := r.janitor.Stop()
	<-ctx.Done()
	r.janitor = nil
}

// sweep evicts entries older than the max age, ending their spans, and
// returns the number of evicted entries.
func (r *Registry) sweep() int {
	cutoff := time.Now().Add(-r.maxAge)

	r.mu.Lock()
	var orphans []trace.Span
	for key, e := range r.entries {
		if e.insertedAt.Before(cutoff) {
			orphans = append(orphans, e.span)
			delete(r.entries, key)
		}
	}
	r.mu.Unlock()

	for _, span := range orphans {
		span.End()
	}

	if r.fm != nil && len(orphans) > 0 {
		r.fm.OrphanEvicted(len(orphans))
		for range orphans {
			r.fm.AssociationClosed()
		}
	}

	return len(orphans)
}
