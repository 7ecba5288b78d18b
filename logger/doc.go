// Package logger provides structured logging for execkit using zerolog.
//
// Logs go to stderr by default so they never interleave with the standard
// output of a command being run. Loggers are component-scoped and pick up
// the trace and span IDs of an active OpenTelemetry span.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("process")
//	log.Debug("spawned", logger.Fields("pid", 4242))
package logger
