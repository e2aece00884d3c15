// Package observability exposes Prometheus metrics and OpenTelemetry tracing
// for the vessel tracking pipeline.
package observability
