package process

import (
	"fmt"
	"path/filepath"
	"slices"
)

// ExecPolicy decides whether a program may be executed. It is consulted
// after the program path has been found to exist and before anything is
// spawned. Returning an error denies execution.
type ExecPolicy interface {
	CheckExec(path string) error
}

// PolicyFunc adapts a function to the ExecPolicy interface.
type PolicyFunc func(path string) error

// CheckExec calls f(path).
func (f PolicyFunc) CheckExec(path string) error { return f(path) }

// AllowAll permits every program.
type AllowAll struct{}

// CheckExec always returns nil.
func (AllowAll) CheckExec(string) error { return nil }

// DenyList rejects programs whose path or base name is listed.
type DenyList []string

// CheckExec returns an error if path matches an entry.
func (d DenyList) CheckExec(path string) error {
	if matchesAny(d, path) {
		return fmt.Errorf("%s is on the deny list", filepath.Base(path))
	}
	return nil
}

// AllowList permits only programs whose path or base name is listed.
// An empty AllowList permits nothing.
type AllowList []string

// CheckExec returns an error unless path matches an entry.
func (a AllowList) CheckExec(path string) error {
	if !matchesAny(a, path) {
		return fmt.Errorf("%s is not on the allow list", filepath.Base(path))
	}
	return nil
}

// Policies combines several policies; every one of them must permit the program.
type Policies []ExecPolicy

// CheckExec returns the first denial.
func (ps Policies) CheckExec(path string) error {
	for _, p := range ps {
		if err := p.CheckExec(path); err != nil {
			return err
		}
	}
	return nil
}

func matchesAny(entries []string, path string) bool {
	clean := filepath.Clean(path)
	base := filepath.Base(path)
	return slices.ContainsFunc(entries, func(e string) bool {
		return e == base || filepath.Clean(e) == clean
	})
}
