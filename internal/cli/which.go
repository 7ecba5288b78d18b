package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/kbukum/execkit/errors"
)

func newWhichCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "which NAME...",
		Short: "Show where programs are found on the search path",
		Long: `For every NAME, print the absolute path execkit would run. Each directory of
the search path is tried with the configured extensions first, then with
the bare name. Programs denied by the exec policy are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			finder := a.cfg.Process.Finder()
			found := make(map[string]string, len(args))
			var missing error

			for _, name := range args {
				path, ok := finder.Resolve(name)
				if !ok {
					if missing == nil {
						missing = apperrors.ExecutableNotFound(name)
					}
					continue
				}
				found[name] = path
				if !a.jsonOutput {
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
			}

			if a.jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(found); err != nil {
					return apperrors.Internal(err)
				}
			}
			return missing
		},
	}
}
