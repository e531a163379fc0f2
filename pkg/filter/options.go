package filter

import (
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// Decorator runs against a freshly started span before the request
// proceeds. A panicking decorator is recovered and logged; it never aborts
// the request or leaves the span unfinished.
type Decorator func(r *http.Request, span trace.Span)

// ServerOptions configures a ServerFilter. The zero value traces every
// request with no tags. Options are read-only after construction; a filter
// built from them is safe for concurrent use.
type ServerOptions struct {
	// OperationName overrides the span name. When empty the absolute
	// request URL is used.
	OperationName string

	// Attributes selects which request fields are tagged on the span.
	// Absent fields are skipped without error.
	Attributes []ServerAttribute

	// Properties names context properties whose values are recorded as
	// span events when present.
	Properties []string

	// Decorator, when set, is invoked with the request and the new span.
	Decorator Decorator
}

// ClientOptions configures a ClientFilter.
type ClientOptions struct {
	// Attributes selects which request fields are tagged on the span (or
	// recorded as events, for the body-describing attributes).
	Attributes []ClientAttribute

	// Properties names context properties whose values are recorded as
	// span events when present.
	Properties []string

	// Decorator, when set, is invoked with the request and the new span.
	Decorator Decorator
}
