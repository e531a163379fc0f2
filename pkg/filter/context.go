package filter

import (
	"context"

	"mercator-hq/europa/pkg/tracing"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// serverKeyKey stores the association key of the server-side span.
	serverKeyKey contextKey = "server_span_key"

	// clientKeyKey stores the association key of the client-side span.
	clientKeyKey contextKey = "client_span_key"

	// propertiesKey stores the per-request property bag.
	propertiesKey contextKey = "properties"

	// securityContextKey stores the request's security context.
	securityContextKey contextKey = "security_context"
)

// withServerKey stores the server-side association key in the context.
func withServerKey(ctx context.Context, key tracing.Key) context.Context {
	return context.WithValue(ctx, serverKeyKey, key)
}

// ServerKeyFromContext returns the association key the server request filter
// registered for this exchange, if any. Outbound requests built from this
// context let the client filter find the ambient parent span.
func ServerKeyFromContext(ctx context.Context) (tracing.Key, bool) {
	key, ok := ctx.Value(serverKeyKey).(tracing.Key)
	return key, ok
}

// withClientKey stores the client-side association key in the context.
func withClientKey(ctx context.Context, key tracing.Key) context.Context {
	return context.WithValue(ctx, clientKeyKey, key)
}

// ClientKeyFromContext returns the association key the client request filter
// registered for this outbound exchange, if any.
func ClientKeyFromContext(ctx context.Context) (tracing.Key, bool) {
	key, ok := ctx.Value(clientKeyKey).(tracing.Key)
	return key, ok
}
