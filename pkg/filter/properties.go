package filter

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// properties is the per-request property bag. Application code attaches
// named values to a request's context and the filters log the configured
// ones on the span.
type properties map[string]any

// WithProperty attaches a named property to the context. The bag is
// copy-on-write, so contexts derived from the same parent do not observe
// each other's properties.
func WithProperty(ctx context.Context, name string, value any) context.Context {
	bag, _ := ctx.Value(propertiesKey).(properties)

	next := make(properties, len(bag)+1)
	for k, v := range bag {
		next[k] = v
	}
	next[name] = value

	return context.WithValue(ctx, propertiesKey, next)
}

// Property returns the named property from the context's property bag.
func Property(ctx context.Context, name string) (any, bool) {
	bag, ok := ctx.Value(propertiesKey).(properties)
	if !ok {
		return nil, false
	}
	v, ok := bag[name]
	return v, ok
}

// PropertyNames returns the sorted names of all properties in the context's
// property bag.
func PropertyNames(ctx context.Context) []string {
	bag, ok := ctx.Value(propertiesKey).(properties)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(bag))
	for name := range bag {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// logProperties records the named context properties as span events.
// Properties missing from the bag or holding nil are skipped.
func logProperties(ctx context.Context, span trace.Span, names []string) {
	for _, name := range names {
		value, ok := Property(ctx, name)
		if !ok || value == nil {
			continue
		}
		span.AddEvent(name, trace.WithAttributes(attrValue(name, value)))
	}
}

// attrValue converts an arbitrary property value into a span attribute,
// preserving the native type where the attribute API supports it.
func attrValue(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
