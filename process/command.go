package process

import (
	"slices"
	"strings"
)

// Command is the ordered argv of a process: token 0 is the program path,
// the remaining tokens are its arguments.
//
// A Command is single-writer. Mutating it while a run is in flight is not
// supported.
type Command struct {
	tokens []string
}

// NewCommand creates a command from the given tokens. The slice is copied.
func NewCommand(tokens ...string) *Command {
	return &Command{tokens: slices.Clone(tokens)}
}

// Append adds tokens to the end of the command.
func (c *Command) Append(tokens ...string) {
	c.tokens = append(c.tokens, tokens...)
}

// Tokens returns the live token slice. Callers must not assume isolation
// from later Append calls or from writes through the returned slice.
func (c *Command) Tokens() []string {
	return c.tokens
}

// Len returns the number of tokens.
func (c *Command) Len() int { return len(c.tokens) }

// IsEmpty reports whether the command has no tokens at all.
func (c *Command) IsEmpty() bool { return len(c.tokens) == 0 }

// Program returns token 0, or "" for an empty command.
func (c *Command) Program() string {
	if c.IsEmpty() {
		return ""
	}
	return c.tokens[0]
}

// Args returns every token after the program.
func (c *Command) Args() []string {
	if c.IsEmpty() {
		return nil
	}
	return c.tokens[1:]
}

// Clone returns an independent copy.
func (c *Command) Clone() *Command {
	return NewCommand(c.tokens...)
}

// String joins the tokens with single spaces. It is meant for logs, not for
// feeding a shell.
func (c *Command) String() string {
	return strings.Join(c.tokens, " ")
}

// ExitCodes is an insertion-ordered set of exit statuses that count as a
// regular, non-failing termination. The zero value is an empty set, in which
// case every exit status is a failure.
type ExitCodes struct {
	codes []int
}

// NewExitCodes creates a set holding codes, dropping duplicates.
func NewExitCodes(codes ...int) *ExitCodes {
	s := &ExitCodes{}
	for _, code := range codes {
		s.Add(code)
	}
	return s
}

// Add inserts code unless it is already present. It reports whether the set changed.
func (s *ExitCodes) Add(code int) bool {
	if s.Contains(code) {
		return false
	}
	s.codes = append(s.codes, code)
	return true
}

// Contains reports whether code is a regular exit status.
func (s *ExitCodes) Contains(code int) bool {
	return slices.Contains(s.codes, code)
}

// Len returns the number of registered codes.
func (s *ExitCodes) Len() int { return len(s.codes) }

// Codes returns the registered codes in insertion order.
func (s *ExitCodes) Codes() []int {
	return slices.Clone(s.codes)
}

// Clone returns an independent copy.
func (s *ExitCodes) Clone() *ExitCodes {
	return &ExitCodes{codes: slices.Clone(s.codes)}
}
