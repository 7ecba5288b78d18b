package process

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/execkit/observability"
)

// DefaultPathVar is the environment variable scanned by a Finder.
const DefaultPathVar = "PATH"

// DefaultExtensions are tried, in order, before the bare name.
var DefaultExtensions = []string{".bat", ".exe", ".sh", ".php"}

// ExecutableChecker is implemented by file systems that can tell whether an
// existing path may be executed.
type ExecutableChecker interface {
	IsExecutable(path string) bool
}

// IsExecutable reports whether path is a regular file with an execute bit set.
func (OSFileSystem) IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

// Finder locates programs by bare name on a search path.
type Finder struct {
	// PathVar is the environment variable holding the search path.
	PathVar string
	// Extensions are tried in order in every directory, then the bare name.
	Extensions []string
	// Getenv reads PathVar. Defaults to os.Getenv.
	Getenv func(string) string
	// FileSystem checks candidates. Defaults to OSFileSystem.
	FileSystem FileSystem
	// Policy must permit a candidate for it to match.
	Policy ExecPolicy
	// RequireExecutable also skips candidates the FileSystem reports as not
	// executable. Off by default: an existing candidate the policy permits
	// matches even without execute bits.
	RequireExecutable bool
	// Options are passed to New for the returned executable.
	Options []Option
}

// NewFinder returns a Finder scanning PATH with DefaultExtensions.
func NewFinder() *Finder {
	return &Finder{
		PathVar:    DefaultPathVar,
		Extensions: DefaultExtensions,
	}
}

// Find returns an executable pre-seeded with the absolute path of the first
// match for name, or false if there is none.
func (f *Finder) Find(name string) (*Default, bool) {
	path, ok := f.Resolve(name)
	if !ok {
		return nil, false
	}
	opts := make([]Option, 0, len(f.Options)+1)
	if f.Policy != nil {
		opts = append(opts, WithPolicy(f.Policy))
	}
	opts = append(opts, f.Options...)
	return New(path, opts...), true
}

// Resolve returns the absolute path of the first match for name.
func (f *Finder) Resolve(name string) (string, bool) {
	_, span := observability.StartSpan(context.Background(), observability.SpanFinderLookup)
	defer span.End()
	span.SetAttributes(attribute.String("process.find.name", name))

	if strings.TrimSpace(name) == "" {
		return "", false
	}

	search := f.getenv()(f.pathVar())
	if strings.TrimSpace(search) == "" {
		return "", false
	}

	for _, dir := range filepath.SplitList(search) {
		if dir == "" {
			continue
		}
		base := filepath.Join(dir, name)
		for _, ext := range f.extensions() {
			if path, ok := f.match(base + ext); ok {
				span.SetAttributes(attribute.String(observability.AttrProgram, path))
				return path, true
			}
		}
		if path, ok := f.match(base); ok {
			span.SetAttributes(attribute.String(observability.AttrProgram, path))
			return path, true
		}
	}
	return "", false
}

func (f *Finder) match(candidate string) (string, bool) {
	fs := f.fileSystem()
	if !fs.Exists(candidate) {
		return "", false
	}
	if f.RequireExecutable {
		if ec, ok := fs.(ExecutableChecker); ok && !ec.IsExecutable(candidate) {
			return "", false
		}
	}
	if f.Policy != nil && f.Policy.CheckExec(candidate) != nil {
		return "", false
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", false
	}
	return abs, true
}

func (f *Finder) pathVar() string {
	if f.PathVar == "" {
		return DefaultPathVar
	}
	return f.PathVar
}

func (f *Finder) extensions() []string {
	if f.Extensions == nil {
		return DefaultExtensions
	}
	return f.Extensions
}

func (f *Finder) getenv() func(string) string {
	if f.Getenv == nil {
		return os.Getenv
	}
	return f.Getenv
}

func (f *Finder) fileSystem() FileSystem {
	if f.FileSystem == nil {
		return OSFileSystem{}
	}
	return f.FileSystem
}
