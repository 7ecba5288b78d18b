package errors

import (
	"fmt"
	"strings"
)

// Exit statuses used by ExitStatus, following the shell conventions.
const (
	ExitStatusFailure     = 1
	ExitStatusUsage       = 2
	ExitStatusSoftware    = 70
	ExitStatusOSError     = 71
	ExitStatusUnavailable = 75
	ExitStatusDenied      = 126
	ExitStatusNotFound    = 127
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried once the cause is fixed.
	Retryable bool `json:"retryable"`
	// ExitStatus is the recommended process exit status for a CLI reporting this error.
	ExitStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Fatal reports whether the error signals an environment-level fault.
func (e *AppError) Fatal() bool { return IsFatalCode(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, exitStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		ExitStatus: exitStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Validation ---

// ExecutableNotFound creates an error for a program that cannot be resolved.
// An empty path means the command itself was empty.
func ExecutableNotFound(path string) *AppError {
	if path == "" {
		return &AppError{
			Code: ErrCodeExecutableNotFound, Message: "No executable given, the command line is empty.",
			ExitStatus: ExitStatusNotFound, Retryable: true,
		}
	}
	return &AppError{
		Code: ErrCodeExecutableNotFound, Message: fmt.Sprintf("Executable %s does not exist.", path),
		ExitStatus: ExitStatusNotFound, Retryable: true,
		Details: map[string]any{"path": path},
	}
}

// ExecDenied creates an error for a program rejected by the exec policy.
func ExecDenied(path, reason string) *AppError {
	msg := fmt.Sprintf("Execution of %s is not permitted.", path)
	if reason != "" {
		msg = fmt.Sprintf("Execution of %s is not permitted: %s", path, reason)
	}
	return &AppError{
		Code: ErrCodeExecDenied, Message: msg,
		ExitStatus: ExitStatusDenied, Retryable: false,
		Details: map[string]any{"path": path},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		ExitStatus: ExitStatusUsage, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		ExitStatus: ExitStatusUsage, Retryable: false,
	}
}

// --- Outcome ---

// ExecutionFailed creates an error for a process that exited with a code
// outside the regular set. The message is the trimmed standard error text,
// which may be empty.
func ExecutionFailed(stderr string, exitCode int) *AppError {
	stderr = strings.TrimSpace(stderr)
	return &AppError{
		Code: ErrCodeExecutionFailed, Message: stderr,
		ExitStatus: ExitStatusFailure, Retryable: false,
		Details: map[string]any{"exit_code": exitCode, "stderr": stderr},
	}
}

// --- Environment ---

// SpawnFailed creates an error for a process the OS could not start.
func SpawnFailed(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSpawnFailed, Message: fmt.Sprintf("Unable to start %s.", path),
		ExitStatus: ExitStatusOSError, Retryable: false,
		Details: map[string]any{"path": path}, Cause: cause,
	}
}

// WaitFailed creates an error for an interrupted wait on a running process.
func WaitFailed(pid int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeWaitFailed, Message: "Waiting for the process was interrupted.",
		ExitStatus: ExitStatusSoftware, Retryable: false,
		Details: map[string]any{"pid": pid}, Cause: cause,
	}
}

// --- State ---

// NotExecuted creates an error for an exit code queried before a run completed.
func NotExecuted() *AppError {
	return &AppError{
		Code: ErrCodeNotExecuted, Message: "Process still running or not yet executed.",
		ExitStatus: ExitStatusSoftware, Retryable: true,
	}
}

// AlreadyRunning creates an error for a second background run on the same executable.
func AlreadyRunning(id string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyRunning, Message: "A background run is still in flight.",
		ExitStatus: ExitStatusSoftware, Retryable: true,
		Details: map[string]any{"worker_id": id},
	}
}

// CapacityExceeded creates an error for a worker that found no free slot.
func CapacityExceeded(pool string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeCapacityExceeded, Message: fmt.Sprintf("No free worker slot in %s.", pool),
		ExitStatus: ExitStatusUnavailable, Retryable: true,
		Details: map[string]any{"pool": pool}, Cause: cause,
	}
}

// WaitTimeout creates an error for a caller that gave up waiting on a
// background run. The run itself is not stopped.
func WaitTimeout(id string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeWaitTimeout, Message: "Gave up waiting for the background run.",
		ExitStatus: ExitStatusUnavailable, Retryable: true,
		Details: map[string]any{"worker_id": id}, Cause: cause,
	}
}

// Internal wraps an unexpected error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		ExitStatus: ExitStatusSoftware, Retryable: false, Cause: cause,
	}
}
