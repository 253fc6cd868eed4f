package probe

import (
	"context"
	"path/filepath"

	"github.com/flarebyte/buildfacts/internal/facts"
	"github.com/flarebyte/buildfacts/internal/lockfile"
)

const dependenciesProbe = "dependencies"

func init() { Register(dependenciesProbe, facts.CapDependencies, dependenciesRunner) }

// dependenciesRunner treats every lock file problem as fatal: the probe
// only runs when the capability was asked for.
func dependenciesRunner(_ context.Context, in facts.FactSet, deps Deps) (facts.FactSet, Outcome) {
	path, err := lockfilePath(deps.Dir, deps.Config.Lockfile)
	if err != nil {
		return in, fatal(dependenciesProbe, err)
	}
	deep := in.Enabled(facts.CapDependencyTree)
	d, err := lockfile.Load(path, deep)
	if err != nil {
		return in, fatal(dependenciesProbe, err)
	}
	deps.Logger.Debug("lock file parsed", "probe", dependenciesProbe, "path", path, "deep", deep, "count", len(d.All))
	out := in
	out.Deps = &d
	return out, present(dependenciesProbe)
}

func lockfilePath(dir, name string) (string, error) {
	if name == "" {
		name = lockfile.GoSumName
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	if filepath.Base(name) != name {
		return filepath.Join(dir, name), nil
	}
	return lockfile.Find(dir, name)
}
