package ci

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flarebyte/buildfacts/ci"
	"github.com/flarebyte/buildfacts/cmd/buildfacts/common"
)

// NewCmd creates the `buildfacts ci` command.
func NewCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:           "ci",
		Short:         "Print the continuous integration platform of the current environment",
		Args:          common.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := common.RuntimeFrom(cmd.Context())
			p, ok := ci.DetectFrom(ci.LookupFunc(rt.Env))
			if quiet {
				if !ok {
					return common.Failed(errors.New("no CI platform detected"))
				}
				return nil
			}
			name := "none"
			if ok {
				name = p.String()
			}
			_, err := fmt.Fprintln(rt.Stdout, name)
			return err
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print nothing; exit 1 when no platform is detected")
	return cmd
}
