package process

import "context"

// Executable is the contract shared by every execution strategy: mutate the
// command, register regular exit codes, run, and query the outcome.
//
// Configuration is expected to happen from one goroutine before Exec is
// called. Implementations do not guard the Command or the ExitCodes
// against concurrent mutation during a run.
type Executable interface {
	// Exec runs the command. The context carries tracing and logging values;
	// it does not cancel a spawned process.
	Exec(ctx context.Context) error
	// ExitCode returns the exit status of the last completed run, or a
	// NOT_EXECUTED error if no run has completed yet.
	ExitCode() (int, error)
	// AddArgument appends a single literal token.
	AddArgument(token string) Executable
	// Apply lets arg append any number of tokens.
	Apply(arg Argument) Executable
	// AddRegularExitCode registers code as a non-failing exit status. Idempotent.
	AddRegularExitCode(code int) Executable
	// CommandLine returns the live command.
	CommandLine() *Command
	// ValidExitCodes returns the live set of regular exit codes.
	ValidExitCodes() *ExitCodes
}

// Argument contributes one or more tokens to an Executable and returns that
// same Executable so calls can be chained.
type Argument interface {
	AppendTo(e Executable) Executable
}

// ArgumentFunc adapts a function to the Argument interface.
type ArgumentFunc func(e Executable) Executable

// AppendTo calls f(e).
func (f ArgumentFunc) AppendTo(e Executable) Executable { return f(e) }

// Token is a single literal argument.
type Token string

// AppendTo appends the token verbatim.
func (t Token) AppendTo(e Executable) Executable {
	return e.AddArgument(string(t))
}

type priorityKey struct{}

// WithPriority returns a context that asks a run to spawn its process at
// niceness. Only the run receiving the context is affected. An executable
// configured with its own priority hint keeps it.
func WithPriority(ctx context.Context, niceness int) context.Context {
	return context.WithValue(ctx, priorityKey{}, niceness)
}

// PriorityFrom returns the niceness requested by WithPriority, if any.
func PriorityFrom(ctx context.Context) (int, bool) {
	n, ok := ctx.Value(priorityKey{}).(int)
	return n, ok
}
