package process

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Process is a spawned OS process.
type Process interface {
	// Pid returns the OS process id.
	Pid() int
	// Wait blocks until the process terminates and returns its exit status.
	// A non-nil error means the wait itself failed, not that the process
	// exited with a non-zero status.
	Wait() (int, error)
	// Stderr returns everything the process wrote to standard error. It is
	// complete once Wait has returned.
	Stderr() string
}

// Prioritizer is implemented by processes whose scheduling priority can be
// changed after they were spawned. Processes that do not implement it are
// left alone.
type Prioritizer interface {
	SetPriority(niceness int) error
}

// Spawner starts OS processes. argv[0] is used verbatim as the program
// path, without a PATH lookup.
type Spawner interface {
	Spawn(argv []string) (Process, error)
}

// SpawnerFunc adapts a function to the Spawner interface.
type SpawnerFunc func(argv []string) (Process, error)

// Spawn calls f(argv).
func (f SpawnerFunc) Spawn(argv []string) (Process, error) { return f(argv) }

// OSSpawner spawns processes through os/exec.
type OSSpawner struct {
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader
	// Stdout receives the standard output. Nil discards it.
	Stdout io.Writer
}

// Spawn starts argv and returns without waiting for it. Standard error is
// drained into memory while the process runs so a full pipe cannot stall it.
func (s *OSSpawner) Spawn(argv []string) (Process, error) {
	if len(argv) == 0 {
		return nil, exec.ErrNotFound
	}

	c := &exec.Cmd{ //nolint:gosec // running arbitrary argv is the purpose of this package
		Path:   argv[0],
		Args:   argv,
		Dir:    s.Dir,
		Env:    mergeEnv(s.Env),
		Stdin:  s.Stdin,
		Stdout: s.Stdout,
	}
	p := &osProcess{cmd: c}
	c.Stderr = &p.stderr

	if err := c.Start(); err != nil {
		return nil, err
	}
	return p, nil
}

type osProcess struct {
	cmd    *exec.Cmd
	stderr lockedBuffer
}

func (p *osProcess) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *osProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return p.cmd.ProcessState.ExitCode(), nil
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// SetPriority renices the spawned process. It never touches a process it
// did not start.
func (p *osProcess) SetPriority(niceness int) error {
	pid := p.Pid()
	if pid <= 0 {
		return errNotStarted
	}
	return setPriority(pid, niceness)
}

func (p *osProcess) Stderr() string {
	return p.stderr.String()
}

var errNotStarted = stderrors.New("process not started")

// lockedBuffer is written by the os/exec copy goroutine and may be read
// concurrently.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(data []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(data)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}

var _ Prioritizer = (*osProcess)(nil)
