// Package tracing wires OpenTelemetry into the coordination layer: spans
// around every orchestrated read and write, and a server interceptor for
// the diagnostics service. Tracing is optional; a nil *TracingConfig turns
// every helper into a no-op.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName identifies spans created by this module.
const InstrumentationName = "github.com/Keksclan/goRawrSheets"

// TracingConfig holds the OpenTelemetry configuration.
type TracingConfig struct {
	// TracerProvider supplies the Tracer used to create spans. When nil the
	// global otel.GetTracerProvider() is used.
	TracerProvider trace.TracerProvider

	// Propagators extracts and injects trace context from/into carriers.
	// When nil the global otel.GetTextMapPropagator() is used.
	Propagators propagation.TextMapPropagator
}

// Tracer returns the configured tracer. A nil config yields a no-op tracer.
func (c *TracingConfig) Tracer() trace.Tracer {
	if c == nil {
		return noop.NewTracerProvider().Tracer(InstrumentationName)
	}
	return c.Provider().Tracer(InstrumentationName)
}

// Provider returns the configured provider or the global one.
func (c *TracingConfig) Provider() trace.TracerProvider {
	if c == nil || c.TracerProvider == nil {
		return otel.GetTracerProvider()
	}
	return c.TracerProvider
}

// Propagator returns the configured propagator or the global one.
func (c *TracingConfig) Propagator() propagation.TextMapPropagator {
	if c == nil || c.Propagators == nil {
		return otel.GetTextMapPropagator()
	}
	return c.Propagators
}
