// Package telemetry provides the observability plumbing of a build run:
// the zap logger, one OpenTelemetry span per pipeline stage, and build
// metrics written in the Prometheus text format.
//
// Nothing here is required for a build to succeed. A nil *Metrics and a
// no-op tracer provider are both valid and cost nothing.
//
// # Metrics
//
// Metrics are collected in a private registry and written once at the end
// of a run with WriteFile, in the node-exporter textfile format:
//
//	azle_build_stage_duration_seconds{canister="counter",stage="compile"} 41.2
//	azle_build_artifact_bytes{canister="counter",phase="optimized"} 1.2e+06
//	azle_build_success{canister="counter"} 1
//	azle_build_last_run_timestamp_seconds{canister="counter"} 1.7e+09
package telemetry
