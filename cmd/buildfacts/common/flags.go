package common

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flarebyte/buildfacts/internal/config"
	"github.com/flarebyte/buildfacts/internal/logging"
	"github.com/flarebyte/buildfacts/internal/probe"
)

// ConfigFlags are the flags that select and adjust the configuration.
type ConfigFlags struct {
	Config   string
	Dir      string
	Enable   []string
	Disable  []string
	Lockfile string
}

// Register adds the flags to cmd.
func (f *ConfigFlags) Register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.Config, "config", "c", "", "Path to config file (.cue); defaults to "+config.FileName+" in --dir")
	fl.StringVarP(&f.Dir, "dir", "C", "", "Build directory (default: working directory)")
	fl.StringSliceVar(&f.Enable, "enable", nil, "Capabilities to enable (comma separated)")
	fl.StringSliceVar(&f.Disable, "disable", nil, "Capabilities to disable (comma separated)")
	fl.StringVar(&f.Lockfile, "lockfile", "", "Lock file path or name (default: "+config.DefaultLockfile+")")
}

// Resolve loads the configuration and applies the flag overrides. Every
// error it returns is a usage error.
func (f *ConfigFlags) Resolve(rt Runtime) (string, config.Config, error) {
	dir := f.Dir
	if dir == "" {
		wd, err := rt.Getwd()
		if err != nil {
			return "", config.Config{}, Usagef("failed to resolve working directory: %v", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", config.Config{}, Usage(err)
	}
	var cfg config.Config
	if f.Config != "" {
		cfg, err = config.Load(f.Config)
	} else {
		cfg, err = config.Discover(dir)
	}
	if err != nil {
		return "", config.Config{}, Usage(err)
	}
	if err := cfg.ApplyToggles(f.Enable, f.Disable); err != nil {
		return "", config.Config{}, Usage(err)
	}
	if f.Lockfile != "" {
		cfg.Lockfile = f.Lockfile
	}
	return dir, cfg, nil
}

// Deps builds the probe dependencies for a run in dir.
func Deps(ctx context.Context, rt Runtime, dir string, cfg config.Config) probe.Deps {
	return probe.Deps{
		Dir:      dir,
		Env:      rt.Env,
		Config:   cfg,
		Logger:   logging.FromContext(ctx),
		Exec:     rt.Exec,
		LookPath: rt.LookPath,
		Now:      rt.Now,
	}
}
