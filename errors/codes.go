package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Validation errors, raised before any process is spawned.
const (
	// ErrCodeExecutableNotFound indicates an empty command or a program path that does not exist.
	ErrCodeExecutableNotFound ErrorCode = "EXECUTABLE_NOT_FOUND"
	// ErrCodeExecDenied indicates the exec policy rejected the program.
	ErrCodeExecDenied ErrorCode = "EXEC_DENIED"
	// ErrCodeInvalidInput indicates invalid configuration or arguments.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Outcome errors
const (
	// ErrCodeExecutionFailed indicates the process exited with a code that is not regular.
	ErrCodeExecutionFailed ErrorCode = "EXECUTION_FAILED"
)

// Environment errors (fatal)
const (
	// ErrCodeSpawnFailed indicates the OS could not start the process.
	ErrCodeSpawnFailed ErrorCode = "SPAWN_FAILED"
	// ErrCodeWaitFailed indicates waiting for the process was interrupted.
	ErrCodeWaitFailed ErrorCode = "WAIT_FAILED"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// State errors
const (
	// ErrCodeNotExecuted indicates the exit code was queried before a run completed.
	ErrCodeNotExecuted ErrorCode = "NOT_EXECUTED"
	// ErrCodeAlreadyRunning indicates a background run is still in flight.
	ErrCodeAlreadyRunning ErrorCode = "ALREADY_RUNNING"
	// ErrCodeCapacityExceeded indicates no worker slot was available.
	ErrCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"
	// ErrCodeWaitTimeout indicates a caller stopped waiting for a background
	// run that is still going.
	ErrCodeWaitTimeout ErrorCode = "WAIT_TIMEOUT"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeExecutableNotFound: true,
	ErrCodeNotExecuted:        true,
	ErrCodeAlreadyRunning:     true,
	ErrCodeCapacityExceeded:   true,
	ErrCodeWaitTimeout:        true,
	ErrCodeExecutionFailed:    false,
	ErrCodeSpawnFailed:        false,
	ErrCodeWaitFailed:         false,
	ErrCodeInternal:           false,
}

var fatalCodes = map[ErrorCode]bool{
	ErrCodeSpawnFailed: true,
	ErrCodeWaitFailed:  true,
}

// IsRetryableCode returns true if the caller may fix the situation and try again.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsFatalCode returns true if the code signals an environment-level fault.
func IsFatalCode(code ErrorCode) bool {
	return fatalCodes[code]
}
