package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/kbukum/execkit/errors"
	"github.com/kbukum/execkit/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if !a.jsonOutput {
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(info); err != nil {
				return apperrors.Internal(err)
			}
			return nil
		},
	}
}
