// Package collect runs the probes in order and writes the generated file.
//
// Probes run sequentially. A fatal outcome does not stop the run, so that
// every mandatory failure is reported at once, but it does prevent the
// output from being written.
package collect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flarebyte/buildfacts/internal/facts"
	"github.com/flarebyte/buildfacts/internal/probe"
	"github.com/flarebyte/buildfacts/internal/render"
)

// Report summarizes one run.
type Report struct {
	Facts    facts.FactSet
	Outcomes []probe.Outcome
}

// Absent lists the probes that ran but produced no facts.
func (r Report) Absent() []probe.Outcome {
	var out []probe.Outcome
	for _, o := range r.Outcomes {
		if o.Status == probe.Absent {
			out = append(out, o)
		}
	}
	return out
}

// Collect runs every enabled probe in probe.Order. The returned error joins
// the fatal outcomes, each carrying its probe name.
func Collect(ctx context.Context, deps probe.Deps) (Report, error) {
	deps = deps.Normalize()
	log := deps.Logger
	caps := deps.Config.Capabilities.Clone()

	rep := Report{Facts: facts.FactSet{Capabilities: caps}}
	var errs []error
	for _, name := range probe.Order {
		if !probe.Enabled(name, caps) {
			log.Debug("probe skipped", "probe", name)
			continue
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		fs, out := probe.Run(ctx, name, rep.Facts, deps)
		rep.Facts = fs
		rep.Outcomes = append(rep.Outcomes, out)
		switch out.Status {
		case probe.Present:
			log.Debug("probe done", "probe", name)
		case probe.Absent:
			log.Info("probe absent", "probe", name, "reason", out.Reason)
		case probe.Fatal:
			log.Error("probe failed", "probe", name, "error", out.Err)
			errs = append(errs, out.Err)
		}
	}
	return rep, errors.Join(errs...)
}

// Output locates the generated file.
type Output struct {
	Path    string
	Package string
}

// Generate collects, renders and writes out.Path. Nothing is written when
// collection or rendering fails.
func Generate(ctx context.Context, deps probe.Deps, out Output) (Report, error) {
	deps = deps.Normalize()
	rep, err := Collect(ctx, deps)
	if err != nil {
		return rep, err
	}
	src, err := render.Render(rep.Facts, out.Package)
	if err != nil {
		return rep, err
	}
	path := out.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(deps.Dir, path)
	}
	if err := WriteFile(path, src); err != nil {
		return rep, err
	}
	deps.Logger.Info("generated", "path", path, "bytes", len(src))
	return rep, nil
}

// WriteFile replaces path with data through a temporary file in the same
// directory, so readers never see a partial file.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
