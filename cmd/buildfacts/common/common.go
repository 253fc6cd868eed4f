// Package common holds what the buildfacts subcommands share: the process
// runtime they read from, exit-code errors and the configuration flags.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/flarebyte/buildfacts/internal/probe"
)

const (
	ExitCollect = 1
	ExitUsage   = 2
)

// ExitError carries the process exit code for main.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }
func (e *ExitError) ExitCode() int { return e.Code }

// Usage marks err as a configuration or usage error.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: ExitUsage, Err: err}
}

// Usagef is Usage with fmt.Errorf formatting.
func Usagef(format string, args ...any) error { return Usage(fmt.Errorf(format, args...)) }

// Failed marks err as a collection failure.
func Failed(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: ExitCollect, Err: err}
}

// Code returns the exit code for err: 0 for nil, 1 unless err says
// otherwise.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) && ec.ExitCode() != 0 {
		return ec.ExitCode()
	}
	return ExitCollect
}

// Runtime is the process environment the commands run against.
type Runtime struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Env      probe.Env
	Exec     probe.Executor
	LookPath func(string) (string, error)
	Now      func() time.Time
	Getwd    func() (string, error)
}

// OS returns the runtime of the current process.
func OS() Runtime {
	return Runtime{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Env:      os.LookupEnv,
		LookPath: exec.LookPath,
		Now:      time.Now,
		Getwd:    os.Getwd,
	}
}

type runtimeKey struct{}

// WithRuntime stores rt in ctx.
func WithRuntime(ctx context.Context, rt Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// RuntimeFrom returns the runtime stored in ctx, or OS().
func RuntimeFrom(ctx context.Context) Runtime {
	if rt, ok := ctx.Value(runtimeKey{}).(Runtime); ok {
		return rt
	}
	return OS()
}

// NoArgs rejects positional arguments as a usage error.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return Usagef("unexpected argument %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}
