// Package logging provides structured logging with automatic trace
// correlation for Mercator Europa.
//
// The Logger wraps log/slog and enriches context-aware log calls with the
// request ID, operation name, and the trace and span IDs of the active
// OpenTelemetry span:
//
//	logger, _ := logging.New(&cfg.Telemetry.Logging, nil)
//	logger.InfoContext(ctx, "request completed", "status", 200)
//
// produces (JSON format):
//
//	{
//	  "time": "2026-08-28T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000",
//	  "trace_id": "4bf92f3577b34da6a3ce929d0e0e4736",
//	  "span_id": "00f067aa0ba902b7",
//	  "status": 200
//	}
//
// This package carries the diagnostics the tracing filters are allowed to
// emit: extraction fallbacks, missing associations on response, and swallowed
// decorator panics are logged at debug level and never surfaced to callers.
package logging
