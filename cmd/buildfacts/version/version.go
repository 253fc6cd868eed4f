package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/flarebyte/buildfacts/cmd/buildfacts/common"
	"github.com/flarebyte/buildfacts/internal/buildinfo"
)

// NewCmd creates the `buildfacts version` command.
func NewCmd() *cobra.Command {
	var flagShort, flagJSON bool
	cmd := &cobra.Command{
		Use:           "version",
		Short:         "Print the CLI version",
		Args:          common.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := common.RuntimeFrom(cmd.Context())
			if flagShort {
				_, err := fmt.Fprintln(rt.Stdout, buildinfo.ResolvedVersion())
				return err
			}
			if !flagJSON {
				_, err := fmt.Fprintf(rt.Stdout, "buildfacts %s\n", buildinfo.Summary())
				return err
			}
			out := map[string]any{
				"version":   buildinfo.ResolvedVersion(),
				"commit":    buildinfo.Commit,
				"date":      buildinfo.Date,
				"built_by":  buildinfo.BuiltBy,
				"go":        runtime.Version(),
				"go_os":     runtime.GOOS,
				"go_arch":   runtime.GOARCH,
				"timestamp": rt.Now().UTC().Format(time.RFC3339Nano),
			}
			return encodeJSON(rt.Stdout, out)
		},
	}
	cmd.Flags().BoolVar(&flagShort, "short", false, "Print only the version string")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Print detailed JSON version info")
	return cmd
}
