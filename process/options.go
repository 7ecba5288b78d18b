package process

import (
	"os"

	"github.com/kbukum/execkit/logger"
	"github.com/kbukum/execkit/observability"
)

// FileSystem answers whether a program path exists. It is consulted during
// validation, before anything is spawned.
type FileSystem interface {
	Exists(path string) bool
}

// OSFileSystem checks paths against the real file system.
type OSFileSystem struct{}

// Exists reports whether path names an existing file system entry.
func (OSFileSystem) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Option configures a Default executable.
type Option func(*Default)

// WithSpawner replaces the OS spawner. Tests use it to record spawn attempts.
func WithSpawner(s Spawner) Option {
	return func(d *Default) {
		if s != nil {
			d.spawner = s
		}
	}
}

// WithPolicy sets the policy consulted before every spawn.
func WithPolicy(p ExecPolicy) Option {
	return func(d *Default) {
		if p != nil {
			d.policy = p
		}
	}
}

// WithFileSystem replaces the file system used to validate token 0.
func WithFileSystem(fs FileSystem) Option {
	return func(d *Default) {
		if fs != nil {
			d.fs = fs
		}
	}
}

// WithLogger sets the logger. Defaults to the "process" component logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Default) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMetrics records runs on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Default) {
		d.metrics = m
	}
}

// WithRegularExitCodes registers codes as regular exit statuses.
func WithRegularExitCodes(codes ...int) Option {
	return func(d *Default) {
		for _, code := range codes {
			d.codes.Add(code)
		}
	}
}

// WithPriorityHint renices every spawned process to niceness. 0 leaves the
// priority unchanged.
func WithPriorityHint(niceness int) Option {
	return func(d *Default) {
		d.niceness = niceness
	}
}
