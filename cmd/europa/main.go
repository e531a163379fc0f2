// Mercator Europa is a request tracing filter library for HTTP services.
//
// It provides server and client filters that open an OpenTelemetry span per
// HTTP exchange, tag it with a configurable selection of request fields, and
// propagate trace context across service boundaries.
//
// Usage:
//
//	# Show version information
//	europa version
//
//	# Validate a configuration file
//	europa validate --config /path/to/config.yaml
//
//	# Run a self-contained traced demo service
//	europa demo --listen :8080
//
// For complete documentation, see: https://github.com/mercator-hq/europa
package main

func main() {
	Execute()
}
