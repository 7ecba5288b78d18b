// Package errors provides the structured error type used across execkit.
// Every failure of the execution lifecycle carries a machine-readable code,
// a retryable flag and the exit status a CLI should terminate with.
package errors
