// Package tracing wraps OpenTelemetry so that units can open a span around
// every lifecycle run without importing the SDK themselves. Until Init (or
// InitWithExporter) is called the global no-op tracer is used and spans cost
// next to nothing.
package tracing
