// Package probe gathers one category of build facts per probe.
//
// Probes are registered by name and run by the collector in Order. Each
// run returns the enriched FactSet together with an Outcome telling
// whether the category is present, absent (degraded, not an error) or
// fatal.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/flarebyte/buildfacts/internal/config"
	"github.com/flarebyte/buildfacts/internal/facts"
)

// Status classifies a probe run.
type Status int

const (
	Present Status = iota
	Absent
	Fatal
)

func (s Status) String() string {
	switch s {
	case Present:
		return "present"
	case Absent:
		return "absent"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// Outcome is the tagged result of one probe run. Err is set only for
// Fatal outcomes; Reason explains an Absent one.
type Outcome struct {
	Probe  string
	Status Status
	Reason string
	Err    error
}

// Error ties a fatal cause to the probe that raised it.
type Error struct {
	Probe string
	Err   error
}

func (e *Error) Error() string { return e.Probe + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func present(name string) Outcome { return Outcome{Probe: name, Status: Present} }

func absent(name, reason string) Outcome {
	return Outcome{Probe: name, Status: Absent, Reason: reason}
}

func fatal(name string, err error) Outcome {
	return Outcome{Probe: name, Status: Fatal, Err: &Error{Probe: name, Err: err}}
}

func fatalf(name, format string, args ...any) Outcome {
	return fatal(name, fmt.Errorf(format, args...))
}

// Env looks up a build parameter.
type Env func(key string) (string, bool)

// MapEnv serves lookups from m.
func MapEnv(m map[string]string) Env {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

// Executor runs an external command and returns its stdout.
type Executor func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// Deps carries everything a probe may read. Zero fields fall back to the
// process defaults through Normalize.
type Deps struct {
	Dir      string
	Env      Env
	Config   config.Config
	Logger   *slog.Logger
	Exec     Executor
	LookPath func(string) (string, error)
	Now      func() time.Time
}

// Normalize fills unset dependencies with process defaults.
func (d Deps) Normalize() Deps {
	if d.Dir == "" {
		d.Dir = "."
	}
	if d.Env == nil {
		d.Env = os.LookupEnv
	}
	if d.Config.Capabilities == nil {
		d.Config = config.Default()
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Exec == nil {
		d.Exec = execCommand
	}
	if d.LookPath == nil {
		d.LookPath = exec.LookPath
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func (d Deps) get(key string) string {
	v, _ := d.Env(key)
	return v
}

func execCommand(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.Output()
}

// Runner executes one probe.
type Runner func(ctx context.Context, in facts.FactSet, deps Deps) (facts.FactSet, Outcome)

type entry struct {
	run Runner
	// gate is the capability that enables the probe; empty means always.
	gate facts.Capability
}

var registry = map[string]entry{}

// Register adds a probe runner.
func Register(name string, gate facts.Capability, r Runner) {
	registry[name] = entry{run: r, gate: gate}
}

// Order is the fixed orchestration order.
var Order = []string{
	"environment",
	"compiler",
	"git",
	"ci",
	"dependencies",
	"time",
	"custom",
}

// Enabled reports whether the probe runs under caps.
func Enabled(name string, caps facts.Capabilities) bool {
	e, ok := registry[name]
	if !ok {
		return false
	}
	return e.gate == "" || caps.Enabled(e.gate)
}

// Run executes a registered probe by name.
func Run(ctx context.Context, name string, in facts.FactSet, deps Deps) (facts.FactSet, Outcome) {
	e, ok := registry[name]
	if !ok {
		return in, fatal(name, ErrUnknown{name: name})
	}
	return e.run(ctx, in, deps)
}

// ErrUnknown is returned when a probe is not registered.
type ErrUnknown struct{ name string }

func (e ErrUnknown) Error() string { return "unknown probe: " + e.name }
