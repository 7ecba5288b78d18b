// Package observability wires OpenTelemetry tracing and metrics into
// execkit.
//
// Executors open a "process.exec" span per run and record run counts,
// durations and error codes through Metrics. Background workers also track
// how many of them are active.
//
// # Configuration
//
//	observability:
//	  enabled: true
//	  endpoint: "localhost:4318"
//	  insecure: true
//	  sample_rate: 1.0
//
// When disabled, the global no-op providers are left in place and a nil
// *Metrics is handed out, which records nothing.
package observability
