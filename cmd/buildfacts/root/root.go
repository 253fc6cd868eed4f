package root

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	cicmd "github.com/flarebyte/buildfacts/cmd/buildfacts/ci"
	"github.com/flarebyte/buildfacts/cmd/buildfacts/common"
	"github.com/flarebyte/buildfacts/cmd/buildfacts/generate"
	"github.com/flarebyte/buildfacts/cmd/buildfacts/show"
	"github.com/flarebyte/buildfacts/cmd/buildfacts/version"
	"github.com/flarebyte/buildfacts/internal/logging"
	"github.com/flarebyte/buildfacts/internal/profiling"
)

type globalFlags struct {
	logLevel   string
	logFormat  string
	profile    string
	profileDir string
	// stopper ends the profile started by the pre-run hook.
	stopper    profiling.Stopper
}

func (g *globalFlags) stop() {
	if g.stopper != nil {
		g.stopper.Stop()
		g.stopper = nil
	}
}

// NewRootCmd creates the root command for buildfacts.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *globalFlags) {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "buildfacts",
		Short: "Collect build-time facts and render them as Go source",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(g.logLevel)
			if err != nil {
				return common.Usage(err)
			}
			format, err := logging.ParseFormat(g.logFormat)
			if err != nil {
				return common.Usage(err)
			}
			rt := common.RuntimeFrom(cmd.Context())
			log := logging.New(rt.Stderr, level, format)
			cmd.SetContext(logging.WithContext(cmd.Context(), log))

			s, err := profiling.Start(g.profile, g.profileDir)
			if err != nil {
				return common.Usage(err)
			}
			g.stopper = s
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	pf.StringVar(&g.logFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&g.profile, "profile", "", "Write a profile of the run: "+strings.Join(profiling.Modes(), ", "))
	pf.StringVar(&g.profileDir, "profile-dir", "", "Directory for profile output (default: working directory)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return common.Usage(err) })

	// Subcommands
	cmd.AddCommand(generate.NewCmd())
	cmd.AddCommand(show.NewCmd())
	cmd.AddCommand(cicmd.NewCmd())
	cmd.AddCommand(version.NewCmd())

	return cmd, g
}

// Execute runs the root command with provided args against the current
// process.
func Execute(args []string) error {
	return ExecuteWith(context.Background(), common.OS(), args)
}

// ExecuteWith runs the root command against rt.
func ExecuteWith(ctx context.Context, rt common.Runtime, args []string) error {
	cmd, g := newRootCmd()
	defer g.stop()
	cmd.SetArgs(args)
	cmd.SetOut(rt.Stdout)
	cmd.SetErr(rt.Stderr)
	return cmd.ExecuteContext(common.WithRuntime(ctx, rt))
}
