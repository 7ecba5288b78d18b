package process

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/execkit/errors"
	"github.com/kbukum/execkit/logger"
	"github.com/kbukum/execkit/observability"
)

// Default runs its command on the calling goroutine and blocks until the
// process terminates.
//
// Every Exec validates the current command again, so a reused Executable is
// always checked against what it will actually spawn.
type Default struct {
	command  *Command
	codes    *ExitCodes
	spawner  Spawner
	policy   ExecPolicy
	fs       FileSystem
	log      *logger.Logger
	metrics  *observability.Metrics
	niceness int

	mu      sync.Mutex
	state   State
	outcome *Outcome
}

// New creates an executable for a single program path.
func New(program string, opts ...Option) *Default {
	return NewFromArgs([]string{program}, opts...)
}

// NewFromArgs creates an executable from a full argv. The slice is copied.
func NewFromArgs(tokens []string, opts ...Option) *Default {
	d := &Default{
		command: NewCommand(tokens...),
		codes:   &ExitCodes{},
		spawner: &OSSpawner{},
		policy:  AllowAll{},
		fs:      OSFileSystem{},
		log:     logger.Get("process"),
		state:   StateCreated,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFrom creates an executable holding a copy of other's command tokens and
// regular exit codes. Later changes to either side do not affect the other.
func NewFrom(other Executable, opts ...Option) *Default {
	d := NewFromArgs(other.CommandLine().Tokens(), opts...)
	for _, code := range other.ValidExitCodes().Codes() {
		d.codes.Add(code)
	}
	return d
}

// Exec validates, spawns and waits for the command.
//
// It returns an EXECUTABLE_NOT_FOUND or EXEC_DENIED error before anything is
// spawned, EXECUTION_FAILED carrying the trimmed stderr if the exit code is
// not regular, and SPAWN_FAILED or WAIT_FAILED for OS faults.
func (d *Default) Exec(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanProcessExec)
	err := d.run(ctx, span)
	observability.EndSpan(span, err)
	return err
}

func (d *Default) run(ctx context.Context, span trace.Span) error {
	argv := slices.Clone(d.command.Tokens())
	program := d.command.Program()
	log := d.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldProgram, program,
		logger.FieldArgc, len(argv),
	))
	span.SetAttributes(
		attribute.String(observability.AttrProgram, program),
		attribute.Int(observability.AttrArgc, len(argv)),
	)

	d.setState(StateValidating)
	if appErr := d.validate(argv); appErr != nil {
		d.setState(StateValidationFailed)
		d.fail(ctx, program, observability.StatusRejected, 0, appErr)
		log.Debug("process rejected", logger.MergeWithError(nil, appErr))
		return appErr
	}

	d.setState(StateSpawning)
	start := time.Now()
	proc, err := d.spawner.Spawn(argv)
	if err != nil {
		appErr := apperrors.SpawnFailed(program, err)
		d.setState(StateSpawnFailed)
		d.fail(ctx, program, observability.StatusFatal, time.Since(start), appErr)
		log.Error("process spawn failed", logger.MergeWithError(nil, err))
		return appErr
	}

	pid := proc.Pid()
	d.setState(StateRunning)
	span.SetAttributes(attribute.Int(observability.AttrPID, pid))
	log = log.WithFields(logger.Fields(logger.FieldPID, pid))
	log.Debug("process started")

	d.applyPriority(ctx, proc, log)

	code, err := proc.Wait()
	elapsed := time.Since(start)
	if err != nil {
		appErr := apperrors.WaitFailed(pid, err)
		d.setState(StateWaitFailed)
		d.fail(ctx, program, observability.StatusFatal, elapsed, appErr)
		log.Error("process wait failed", logger.MergeWithError(nil, err))
		return appErr
	}

	outcome := &Outcome{
		ExitCode: code,
		Regular:  d.codes.Contains(code),
		Duration: elapsed,
	}
	if !outcome.Regular {
		outcome.Stderr = strings.TrimSpace(proc.Stderr())
	}
	d.complete(outcome)

	span.SetAttributes(
		attribute.Int(observability.AttrExitCode, code),
		attribute.Bool(observability.AttrRegular, outcome.Regular),
	)
	fields := logger.DurationFields("exec", elapsed)
	fields[logger.FieldExitCode] = code

	if !outcome.Regular {
		appErr := apperrors.ExecutionFailed(outcome.Stderr, code)
		d.fail(ctx, program, observability.StatusFailed, elapsed, appErr)
		log.Info("process exited with a failing code", fields)
		return appErr
	}

	d.metrics.RecordRun(ctx, program, observability.StatusRegular, elapsed)
	log.Debug("process finished", fields)
	return nil
}

// validate checks argv and the exec policy. Nothing has been spawned when it
// returns an error.
func (d *Default) validate(argv []string) *apperrors.AppError {
	if len(argv) == 0 {
		return apperrors.ExecutableNotFound("")
	}
	path := argv[0]
	if !d.fs.Exists(path) {
		return apperrors.ExecutableNotFound(path)
	}
	if err := d.policy.CheckExec(path); err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			return appErr
		}
		return apperrors.ExecDenied(path, err.Error())
	}
	return nil
}

// applyPriority renices proc if a hint is set. The executable's own hint
// wins over one carried by ctx. Processes that are not Prioritizers are
// never touched.
func (d *Default) applyPriority(ctx context.Context, proc Process, log *logger.Logger) {
	niceness := d.niceness
	if niceness == 0 {
		niceness, _ = PriorityFrom(ctx)
	}
	if niceness == 0 {
		return
	}
	p, ok := proc.(Prioritizer)
	if !ok {
		return
	}
	if err := p.SetPriority(niceness); err != nil {
		log.Debug("priority hint not applied", logger.MergeWithError(nil, err))
	}
}

func (d *Default) fail(ctx context.Context, program, status string, elapsed time.Duration, err *apperrors.AppError) {
	d.metrics.RecordRun(ctx, program, status, elapsed)
	d.metrics.RecordError(ctx, string(err.Code), "process")
}

func (d *Default) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

func (d *Default) complete(o *Outcome) {
	d.mu.Lock()
	d.state = StateTerminated
	d.outcome = o
	d.mu.Unlock()
}

// ExitCode returns the exit status of the last completed run. A run that
// failed classification still counts as completed.
func (d *Default) ExitCode() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.outcome == nil {
		return -1, apperrors.NotExecuted()
	}
	return d.outcome.ExitCode, nil
}

// Outcome returns a copy of the last completed run, if any.
func (d *Default) Outcome() (Outcome, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.outcome == nil {
		return Outcome{}, false
	}
	return *d.outcome, true
}

// State returns the lifecycle state of the current or last run.
func (d *Default) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// AddArgument appends token to the command.
func (d *Default) AddArgument(token string) Executable {
	d.command.Append(token)
	return d
}

// Apply lets arg append its tokens.
func (d *Default) Apply(arg Argument) Executable {
	return arg.AppendTo(d)
}

// AddRegularExitCode registers code as a regular exit status.
func (d *Default) AddRegularExitCode(code int) Executable {
	d.codes.Add(code)
	return d
}

// CommandLine returns the live command.
func (d *Default) CommandLine() *Command { return d.command }

// ValidExitCodes returns the live set of regular exit codes.
func (d *Default) ValidExitCodes() *ExitCodes { return d.codes }

// PriorityHint returns the niceness set with WithPriorityHint, 0 if none.
func (d *Default) PriorityHint() int { return d.niceness }

var _ Executable = (*Default)(nil)
