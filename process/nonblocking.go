package process

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/execkit/errors"
	"github.com/kbukum/execkit/logger"
	"github.com/kbukum/execkit/observability"
	"github.com/kbukum/execkit/resilience"
)

// LowestPriority is the niceness applied to processes started by a
// NonBlocking worker unless WithLowPriority(false) is given.
const LowestPriority = 19

// NonBlocking runs a wrapped Executable on its own goroutine. Exec returns
// as soon as the worker has been started.
//
// Every other operation is forwarded to the wrapped Executable unchanged, so
// the command, the regular exit codes and the outcome are shared with it.
//
// By default a failed background run is only logged. Callers that care use
// Wait, Done, Err or WithOnComplete. ExitCode may report NOT_EXECUTED until
// Done is closed.
type NonBlocking struct {
	inner       Executable
	id          string
	bulkhead    *resilience.Bulkhead
	onComplete  func(id string, err error)
	log         *logger.Logger
	metrics     *observability.Metrics
	lowPriority bool

	mu      sync.Mutex
	current *workerRun
}

// workerRun is one background run. err is written before done is closed.
type workerRun struct {
	done chan struct{}
	err  error
}

// NonBlockingOption configures a NonBlocking executable.
type NonBlockingOption func(*NonBlocking)

// WithBulkhead makes workers acquire a slot in b before running. A worker
// that gets none fails with CAPACITY_EXCEEDED.
func WithBulkhead(b *resilience.Bulkhead) NonBlockingOption {
	return func(n *NonBlocking) {
		n.bulkhead = b
	}
}

// WithOnComplete registers fn to be called on the worker goroutine with the
// result of every run. Wait and Done observe the run only after fn returns.
func WithOnComplete(fn func(id string, err error)) NonBlockingOption {
	return func(n *NonBlocking) {
		n.onComplete = fn
	}
}

// WithNonBlockingLogger sets the logger. Defaults to the "process.worker"
// component logger.
func WithNonBlockingLogger(l *logger.Logger) NonBlockingOption {
	return func(n *NonBlocking) {
		if l != nil {
			n.log = l
		}
	}
}

// WithWorkerMetrics records the number of active workers on m.
func WithWorkerMetrics(m *observability.Metrics) NonBlockingOption {
	return func(n *NonBlocking) {
		n.metrics = m
	}
}

// WithLowPriority controls whether worker runs ask the wrapped executable to
// spawn at LowestPriority. The request travels with each run's context, so
// direct runs of the wrapped executable are unaffected, and an executable
// with its own priority hint keeps it.
func WithLowPriority(enabled bool) NonBlockingOption {
	return func(n *NonBlocking) {
		n.lowPriority = enabled
	}
}

// NewNonBlocking wraps inner.
func NewNonBlocking(inner Executable, opts ...NonBlockingOption) *NonBlocking {
	n := &NonBlocking{
		inner:       inner,
		id:          uuid.NewString(),
		log:         logger.Get("process.worker"),
		lowPriority: true,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Exec starts the wrapped run on a new goroutine and returns immediately.
// It fails with ALREADY_RUNNING if the previous run has not finished.
//
// The worker keeps the values of ctx but not its cancellation.
func (n *NonBlocking) Exec(ctx context.Context) error {
	n.mu.Lock()
	if n.current != nil && !isClosed(n.current.done) {
		n.mu.Unlock()
		return apperrors.AlreadyRunning(n.id)
	}
	r := &workerRun{done: make(chan struct{})}
	n.current = r
	n.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	if n.lowPriority {
		ctx = WithPriority(ctx, LowestPriority)
	}
	go n.work(ctx, r)
	return nil
}

func (n *NonBlocking) work(ctx context.Context, r *workerRun) {
	defer close(r.done)

	ctx, span := observability.StartSpan(ctx, observability.SpanWorkerRun,
		trace.WithAttributes(attribute.String(observability.AttrWorkerID, n.id)))
	n.metrics.RecordWorkerStart(ctx)

	err := n.runInner(ctx)

	n.metrics.RecordWorkerEnd(ctx)
	observability.EndSpan(span, err)
	if err != nil {
		n.log.WithContext(ctx).Warn("background run failed", logger.Fields(
			logger.FieldWorkerID, n.id,
			logger.FieldError, err.Error(),
		))
	}

	r.err = err
	if n.onComplete != nil {
		n.onComplete(n.id, err)
	}
}

func (n *NonBlocking) runInner(ctx context.Context) error {
	if n.bulkhead == nil {
		return n.inner.Exec(ctx)
	}
	err := n.bulkhead.Execute(ctx, func() error {
		return n.inner.Exec(ctx)
	})
	if resilience.IsRejection(err) {
		appErr := apperrors.CapacityExceeded(n.bulkhead.Name(), err)
		n.metrics.RecordError(ctx, string(appErr.Code), "process.worker")
		return appErr
	}
	return err
}

// Done returns a channel closed when the latest run finishes. It returns nil
// before the first Exec.
func (n *NonBlocking) Done() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	return n.current.done
}

// Wait blocks until the latest run finishes and returns its error. It fails
// with NOT_EXECUTED if Exec was never called and returns ctx.Err() if ctx
// ends first. The run itself keeps going.
func (n *NonBlocking) Wait(ctx context.Context) error {
	n.mu.Lock()
	r := n.current
	n.mu.Unlock()
	if r == nil {
		return apperrors.NotExecuted()
	}

	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the error of the latest run once it has finished, nil otherwise.
func (n *NonBlocking) Err() error {
	n.mu.Lock()
	r := n.current
	n.mu.Unlock()
	if r == nil || !isClosed(r.done) {
		return nil
	}
	return r.err
}

// ID returns the worker identity used in logs, spans and errors.
func (n *NonBlocking) ID() string { return n.id }

// Unwrap returns the wrapped executable.
func (n *NonBlocking) Unwrap() Executable { return n.inner }

// ExitCode forwards to the wrapped executable.
func (n *NonBlocking) ExitCode() (int, error) {
	return n.inner.ExitCode()
}

// AddArgument forwards to the wrapped executable.
func (n *NonBlocking) AddArgument(token string) Executable {
	n.inner.AddArgument(token)
	return n
}

// Apply lets arg append its tokens through n.
func (n *NonBlocking) Apply(arg Argument) Executable {
	return arg.AppendTo(n)
}

// AddRegularExitCode forwards to the wrapped executable.
func (n *NonBlocking) AddRegularExitCode(code int) Executable {
	n.inner.AddRegularExitCode(code)
	return n
}

// CommandLine forwards to the wrapped executable.
func (n *NonBlocking) CommandLine() *Command { return n.inner.CommandLine() }

// ValidExitCodes forwards to the wrapped executable.
func (n *NonBlocking) ValidExitCodes() *ExitCodes { return n.inner.ValidExitCodes() }

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

var _ Executable = (*NonBlocking)(nil)
