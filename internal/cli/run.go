package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/kbukum/execkit/errors"
	"github.com/kbukum/execkit/logger"
	"github.com/kbukum/execkit/process"
	"github.com/kbukum/execkit/process/arg"
)

type runOptions struct {
	codes       []int
	extraArgs   string
	async       bool
	waitTimeout time.Duration
	nice        int
	stdin       bool
}

// runResult is printed by "run --json".
type runResult struct {
	Program    string   `json:"program"`
	Args       []string `json:"args"`
	ExitCode   int      `json:"exit_code"`
	Regular    bool     `json:"regular"`
	DurationMS int64    `json:"duration_ms"`
	Stderr     string   `json:"stderr,omitempty"`
	WorkerID   string   `json:"worker_id,omitempty"`
}

func newRunCmd(a *app) *cobra.Command {
	o := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [flags] -- PROGRAM [ARGS...]",
		Short: "Run a program and classify its exit code",
		Long: `Run PROGRAM with ARGS and wait for it. A PROGRAM without a path separator
is looked up on the configured search path.

The run succeeds only if the exit code is regular. Regular codes come from
--ok, or from process.regular_exit_codes in the config file. A failed run
prints the program's standard error and exits with the program's code.`,
		Example: `  execkit run -- /bin/ls -l
  execkit run --ok 0,1 -- grep -q needle haystack.txt
  execkit run --args "-c 'echo hi'" -- sh
  execkit run --async --wait-timeout 30s -- make build`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runProgram(cmd, o, args)
		},
	}

	f := cmd.Flags()
	f.IntSliceVar(&o.codes, "ok", nil, "regular exit codes (repeatable, comma separated)")
	f.StringVar(&o.extraArgs, "args", "", "extra arguments, split with shell quoting rules and appended")
	f.BoolVar(&o.async, "async", false, "run on a background worker and wait for it")
	f.DurationVar(&o.waitTimeout, "wait-timeout", 0, "with --async, stop waiting after this long (0 waits forever)")
	f.IntVar(&o.nice, "nice", 0, "niceness applied to the program")
	f.BoolVar(&o.stdin, "stdin", false, "forward standard input to the program")

	return cmd
}

func (a *app) runProgram(cmd *cobra.Command, o *runOptions, args []string) error {
	if len(args) == 0 {
		return apperrors.InvalidInput("program", "a program is required")
	}
	ctx := cmd.Context()

	pc := a.cfg.Process
	if cmd.Flags().Changed("ok") {
		pc.RegularExitCodes = o.codes
		if err := pc.Validate(); err != nil {
			return err
		}
	}

	spawner := &process.OSSpawner{Stdout: cmd.OutOrStdout()}
	if a.jsonOutput {
		spawner.Stdout = cmd.ErrOrStderr()
	}
	if o.stdin {
		spawner.Stdin = cmd.InOrStdin()
	}

	opts := []process.Option{
		process.WithSpawner(spawner),
		process.WithLogger(a.log.WithComponent("process")),
		process.WithMetrics(a.metrics),
	}
	if o.nice != 0 {
		opts = append(opts, process.WithPriorityHint(o.nice))
	}

	exe, err := a.resolve(&pc, args[0], opts)
	if err != nil {
		return err
	}
	for _, token := range args[1:] {
		exe.AddArgument(token)
	}
	if o.extraArgs != "" {
		extra, err := arg.Split(o.extraArgs)
		if err != nil {
			return apperrors.InvalidInput("args", err.Error())
		}
		exe.Apply(extra)
	}

	result := runResult{}
	if o.async {
		result.WorkerID, err = a.runAsync(ctx, &pc, exe, o.waitTimeout)
	} else {
		err = exe.Exec(ctx)
	}

	if a.jsonOutput {
		if out, ok := exe.Outcome(); ok {
			result.Program = exe.CommandLine().Program()
			result.Args = exe.CommandLine().Args()
			result.ExitCode = out.ExitCode
			result.Regular = out.Regular
			result.DurationMS = out.Duration.Milliseconds()
			result.Stderr = out.Stderr
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(result); encErr != nil {
				return apperrors.Internal(encErr)
			}
		}
	}
	return err
}

// resolve turns the PROGRAM argument into an executable. Bare names go
// through the Finder.
func (a *app) resolve(pc *process.Config, program string, opts []process.Option) (*process.Default, error) {
	if strings.ContainsRune(program, filepath.Separator) {
		return process.New(program, pc.Options(opts...)...), nil
	}
	exe, ok := pc.Finder(opts...).Find(program)
	if !ok {
		return nil, apperrors.ExecutableNotFound(program)
	}
	return exe, nil
}

func (a *app) runAsync(ctx context.Context, pc *process.Config, exe *process.Default, timeout time.Duration) (string, error) {
	bg := process.NewNonBlocking(exe, pc.NonBlockingOptions(pc.Bulkhead(AppName),
		process.WithNonBlockingLogger(a.log.WithComponent("process.worker")),
		process.WithWorkerMetrics(a.metrics),
	)...)

	if err := bg.Exec(ctx); err != nil {
		return bg.ID(), err
	}
	a.log.Debug("background run started", logger.Fields(logger.FieldWorkerID, bg.ID()))

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := bg.Wait(ctx); err != nil {
		if ctx.Err() != nil && err == ctx.Err() {
			return bg.ID(), apperrors.WaitTimeout(bg.ID(), err)
		}
		return bg.ID(), err
	}
	return bg.ID(), nil
}
