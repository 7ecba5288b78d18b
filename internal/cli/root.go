package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apperrors "github.com/kbukum/execkit/errors"
	"github.com/kbukum/execkit/version"
)

// NewRootCmd builds the execkit command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   AppName,
		Short: "Run external programs and classify how they exit",
		Long: `execkit runs a program, waits for it and decides from a set of regular
exit codes whether the run succeeded. A failed run reports the program's
standard error.`,
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: search ./execkit.yml and the user config dir)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, disabled")
	cmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print results and errors as JSON")

	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newWhichCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd(a))

	return cmd
}

// Main runs the command line with args and returns the process exit status.
func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if closeErr := a.close(context.WithoutCancel(ctx)); closeErr != nil && err == nil {
		err = closeErr
	}
	if err == nil {
		return 0
	}

	printError(stderr, err, a.jsonOutput)
	return ExitStatus(err)
}

// ExitStatus maps an error to a process exit status. A run that failed
// classification exits with the status of the program itself.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return apperrors.ExitStatusFailure
	}
	if appErr.Code == apperrors.ErrCodeExecutionFailed {
		if code, ok := appErr.Details["exit_code"].(int); ok && code > 0 && code < 256 {
			return code
		}
	}
	if appErr.ExitStatus == 0 {
		return apperrors.ExitStatusFailure
	}
	return appErr.ExitStatus
}

func printError(w io.Writer, err error, jsonOutput bool) {
	appErr, ok := apperrors.AsAppError(err)
	if !jsonOutput {
		if ok && appErr.Code == apperrors.ErrCodeExecutionFailed && appErr.Message != "" {
			fmt.Fprintln(w, appErr.Message)
			return
		}
		fmt.Fprintf(w, "%s: %v\n", AppName, err)
		return
	}

	if !ok {
		appErr = apperrors.Internal(err)
		appErr.Message = err.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(appErr.ToResponse())
}
