// Package filter provides HTTP server and client tracing filters.
//
// A ServerFilter opens a span for each inbound request, continuing the
// trace carried in the propagation headers when one is present, and
// finishes it when the response leaves. A ClientFilter opens a child span
// for each outbound request, injects its context into the headers, and
// finishes it when the response comes back. Both are configured with an
// attribute selection naming the request fields to record on the span.
//
// The filters fail open: malformed propagation headers, absent request
// fields, and panicking decorators degrade the trace, never the request.
package filter
