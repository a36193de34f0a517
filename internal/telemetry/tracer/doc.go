// Package tracer provides distributed tracing for isoauth.
//
//   - otel.go: OpenTelemetry provider setup, span helpers
//
// Every dispatcher operation and every identity REST call runs inside a
// span. Exporting is opt-in (tracing.endpoint); without it spans go to
// the OpenTelemetry no-op provider.
package tracer
