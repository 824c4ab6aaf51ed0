// Package tracing integrates OpenTelemetry with the claimflow services so
// that orchestrator operations and listener handling can be observed as
// spans.  All instrumentation is kept in a separate package so that
// applications which do not require tracing can exclude it from their build.
package tracing
