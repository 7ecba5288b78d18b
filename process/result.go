package process

import "time"

// Outcome holds the result of one completed run.
type Outcome struct {
	// ExitCode is the exit status reported by the OS. -1 if the process was
	// terminated by a signal.
	ExitCode int
	// Regular reports whether ExitCode is one of the registered regular codes.
	Regular bool
	// Stderr is the trimmed standard error text. It is only captured for
	// runs that are not regular and is "" otherwise.
	Stderr string
	// Duration is the wall time from spawn to termination.
	Duration time.Duration
}

// State is a step of the synchronous execution lifecycle.
type State int

const (
	StateCreated State = iota
	StateValidating
	StateSpawning
	StateRunning
	StateTerminated
	StateValidationFailed
	StateSpawnFailed
	StateWaitFailed
)

var stateNames = map[State]string{
	StateCreated:          "created",
	StateValidating:       "validating",
	StateSpawning:         "spawning",
	StateRunning:          "running",
	StateTerminated:       "terminated",
	StateValidationFailed: "validation_failed",
	StateSpawnFailed:      "spawn_failed",
	StateWaitFailed:       "wait_failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Final reports whether the state ends a run.
func (s State) Final() bool {
	switch s {
	case StateTerminated, StateValidationFailed, StateSpawnFailed, StateWaitFailed:
		return true
	default:
		return false
	}
}
