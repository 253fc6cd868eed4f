package show

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/buildfacts/cmd/buildfacts/common"
	"github.com/flarebyte/buildfacts/internal/collect"
	"github.com/flarebyte/buildfacts/internal/factfile"
)

// NewCmd creates the `buildfacts show` command.
func NewCmd() *cobra.Command {
	var (
		cfgFlags common.ConfigFlags
		format   string
	)
	cmd := &cobra.Command{
		Use:           "show",
		Short:         "Collect build facts and print them as YAML or JSON",
		Args:          common.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := factfile.ParseFormat(format)
			if err != nil {
				return common.Usage(err)
			}
			ctx := cmd.Context()
			rt := common.RuntimeFrom(ctx)
			dir, cfg, err := cfgFlags.Resolve(rt)
			if err != nil {
				return err
			}
			rep, collectErr := collect.Collect(ctx, common.Deps(ctx, rt, dir, cfg))
			if ctx.Err() != nil {
				return common.Failed(collectErr)
			}
			// Partial facts are still printed: they help diagnose the failure.
			b, err := factfile.Marshal(rep.Facts, f)
			if err != nil {
				return common.Failed(err)
			}
			if _, err := rt.Stdout.Write(b); err != nil {
				return err
			}
			return common.Failed(collectErr)
		},
	}
	cfgFlags.Register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(factfile.YAML), "Output format: yaml or json")
	return cmd
}
