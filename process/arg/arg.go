// Package arg provides argument contributors for process executables.
//
//	exe.Apply(arg.Flag("-v")).
//	    Apply(arg.Option("-o", out)).
//	    Apply(arg.If(force, arg.Flag("--force")))
package arg

import (
	"fmt"

	"github.com/google/shlex"

	"github.com/kbukum/execkit/process"
)

// Flag appends a single literal token, such as "-v".
func Flag(name string) process.Argument {
	return process.Token(name)
}

// Option appends name followed by value as two tokens.
func Option(name, value string) process.Argument {
	return Each(name, value)
}

// Assign appends name=value as one token.
func Assign(name, value string) process.Argument {
	return process.Token(name + "=" + value)
}

// Each appends every token in order.
func Each(tokens ...string) process.Argument {
	return process.ArgumentFunc(func(e process.Executable) process.Executable {
		for _, t := range tokens {
			e = e.AddArgument(t)
		}
		return e
	})
}

// List applies every argument in order.
func List(args ...process.Argument) process.Argument {
	return process.ArgumentFunc(func(e process.Executable) process.Executable {
		for _, a := range args {
			e = a.AppendTo(e)
		}
		return e
	})
}

// If applies a only when cond is true.
func If(cond bool, a process.Argument) process.Argument {
	return process.ArgumentFunc(func(e process.Executable) process.Executable {
		if !cond {
			return e
		}
		return a.AppendTo(e)
	})
}

// Split tokenizes line with POSIX shell quoting rules. No shell is involved:
// variables and globs are passed through literally.
func Split(line string) (process.Argument, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("splitting %q: %w", line, err)
	}
	return Each(tokens...), nil
}
