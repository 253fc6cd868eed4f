package generate

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/buildfacts/cmd/buildfacts/common"
	"github.com/flarebyte/buildfacts/internal/collect"
	"github.com/flarebyte/buildfacts/internal/config"
)

// DefaultPackage is used when neither a flag, the config nor GOPACKAGE
// names the package.
const DefaultPackage = "main"

type options struct {
	cfg     common.ConfigFlags
	out     string
	pkg     string
	verbose bool
}

// NewCmd creates the `buildfacts generate` command.
func NewCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Collect build facts and write them as a Go source file",
		Long: `Collect build facts and write them as a Go source file.

Typically run from a go:generate directive:

  //go:generate go run github.com/flarebyte/buildfacts/cmd/buildfacts generate -o buildfacts_gen.go`,
		Args:          common.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &o)
		},
	}
	o.cfg.Register(cmd)
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Output file, relative to --dir (default: "+config.DefaultOutputPath+")")
	cmd.Flags().StringVarP(&o.pkg, "package", "p", "", "Package clause of the output (default: config, then $GOPACKAGE, then main)")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "Print the written path and degraded probes to stderr")
	return cmd
}

func run(cmd *cobra.Command, o *options) error {
	ctx := cmd.Context()
	rt := common.RuntimeFrom(ctx)
	dir, cfg, err := o.cfg.Resolve(rt)
	if err != nil {
		return err
	}
	out := collect.Output{Path: cfg.Output.Path, Package: packageName(o.pkg, cfg, rt)}
	if o.out != "" {
		out.Path = o.out
	}
	rep, err := collect.Generate(ctx, common.Deps(ctx, rt, dir, cfg), out)
	if err != nil {
		return common.Failed(err)
	}
	if o.verbose {
		cmd.PrintErrf("wrote %s (package %s)\n", out.Path, out.Package)
		for _, a := range rep.Absent() {
			cmd.PrintErrf("  %s: absent (%s)\n", a.Probe, a.Reason)
		}
	}
	return nil
}

func packageName(flag string, cfg config.Config, rt common.Runtime) string {
	if flag != "" {
		return flag
	}
	if cfg.Output.HasPackage && cfg.Output.Package != "" {
		return cfg.Output.Package
	}
	if p, ok := rt.Env("GOPACKAGE"); ok && p != "" {
		return p
	}
	return DefaultPackage
}
