// Package process runs external programs and classifies how they ended.
//
// An Executable owns a Command (the argv, token 0 being the program path)
// and a set of regular exit codes. Every exit status outside that set is a
// failure, including 0 when nothing has been registered.
//
//	exe := process.New("/bin/ls", process.WithRegularExitCodes(0))
//	exe.AddArgument("-l").Apply(arg.Flag("-a"))
//	if err := exe.Exec(ctx); err != nil {
//	    // errors.HasCode(err, errors.ErrCodeExecutionFailed): err carries stderr
//	}
//	code, _ := exe.ExitCode()
//
// Default blocks the caller until the process ends. NonBlocking wraps any
// Executable and runs it on its own goroutine:
//
//	bg := process.NewNonBlocking(exe, process.WithOnComplete(notify))
//	_ = bg.Exec(ctx)
//	err := bg.Wait(ctx)
//
// Validation happens on every Exec, before anything is spawned: the command
// must not be empty, token 0 must exist, and the ExecPolicy must allow it.
// A Finder resolves bare program names against a PATH-style variable.
package process
