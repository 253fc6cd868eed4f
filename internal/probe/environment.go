package probe

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/flarebyte/buildfacts/internal/facts"
)

const environmentProbe = "environment"

var (
	ErrMissingParameter = errors.New("missing mandatory build parameter")
	ErrInvalidParameter = errors.New("invalid build parameter")
)

const (
	EnvPkgName        = "BUILDFACTS_PKG_NAME"
	EnvPkgVersion     = "BUILDFACTS_PKG_VERSION"
	EnvPkgDescription = "BUILDFACTS_PKG_DESCRIPTION"
	EnvPkgHomepage    = "BUILDFACTS_PKG_HOMEPAGE"
	EnvPkgAuthors     = "BUILDFACTS_PKG_AUTHORS"
	EnvPkgLicense     = "BUILDFACTS_PKG_LICENSE"
	EnvPkgRepository  = "BUILDFACTS_PKG_REPOSITORY"
	EnvTarget         = "BUILDFACTS_TARGET"
	EnvHost           = "BUILDFACTS_HOST"
	EnvProfile        = "BUILDFACTS_PROFILE"
	EnvDebug          = "BUILDFACTS_DEBUG"
	EnvNumJobs        = "BUILDFACTS_NUM_JOBS"
	EnvFeatures       = "BUILDFACTS_FEATURES"
	EnvSourceDate     = "SOURCE_DATE_EPOCH"
)

// DefaultProfile is used when no profile is given.
const DefaultProfile = "debug"

func init() { Register(environmentProbe, "", environmentRunner) }

// environmentRunner always runs: package name, version and target are
// mandatory whatever capabilities are enabled.
func environmentRunner(_ context.Context, in facts.FactSet, deps Deps) (facts.FactSet, Outcome) {
	var manifest Manifest
	if deps.Config.Manifest != "" {
		m, _, err := LoadManifest(filepath.Join(deps.Dir, deps.Config.Manifest))
		if err != nil {
			return in, fatal(environmentProbe, err)
		}
		manifest = m
	}

	pkg := packageFacts(deps, manifest)
	target := deps.get(EnvTarget)
	if target == "" {
		if arch, os := deps.get("GOARCH"), deps.get("GOOS"); arch != "" && os != "" {
			target = goTriple(arch, os)
		}
	}
	var missing []string
	if pkg.Name == "" {
		missing = append(missing, EnvPkgName)
	}
	if pkg.Version == "" {
		missing = append(missing, EnvPkgVersion)
	}
	if target == "" {
		missing = append(missing, EnvTarget)
	}
	if len(missing) > 0 {
		return in, fatalf(environmentProbe, "%w: %s", ErrMissingParameter, strings.Join(missing, ", "))
	}

	build := buildFacts(deps)
	host := deps.get(EnvHost)
	if host == "" {
		host = hostTriple()
	}

	out := in
	out.Package = &pkg
	t := DescribeTarget(target, host, deps.Env)
	out.Target = &t
	out.Build = &build
	names, lower := ParseFeatures(deps.get(EnvFeatures))
	out.Features = &facts.Features{Names: names, Lowercase: lower}

	if in.Enabled(facts.CapSemver) {
		if v, err := ParseVersion(pkg.Version); err != nil {
			deps.Logger.Warn("package version is not semantic, skipping version components",
				"probe", environmentProbe, "version", pkg.Version)
		} else {
			out.Version = &v
		}
	}
	return out, present(environmentProbe)
}

func packageFacts(deps Deps, m Manifest) facts.Package {
	pick := func(key, fallback string) string {
		if v := deps.get(key); v != "" {
			return v
		}
		return fallback
	}
	p := facts.Package{
		Name:        pick(EnvPkgName, m.Name),
		Version:     pick(EnvPkgVersion, m.Version),
		Description: pick(EnvPkgDescription, m.Description),
		Homepage:    pick(EnvPkgHomepage, m.Homepage),
		License:     pick(EnvPkgLicense, m.License),
		Repository:  pick(EnvPkgRepository, m.Repository),
		Authors:     []string{},
	}
	if p.Name == "" {
		p.Name = deps.get("GOPACKAGE")
	}
	if raw := deps.get(EnvPkgAuthors); raw != "" {
		for _, a := range strings.Split(raw, ":") {
			if a = strings.TrimSpace(a); a != "" {
				p.Authors = append(p.Authors, a)
			}
		}
	} else if len(m.Authors) > 0 {
		p.Authors = append(p.Authors, m.Authors...)
	}
	return p
}

// buildFacts reads the optional build parameters. Unparsable values are
// logged and replaced by their defaults.
func buildFacts(deps Deps) facts.Build {
	b := facts.Build{Profile: deps.get(EnvProfile), NumJobs: runtime.NumCPU()}
	if b.Profile == "" {
		b.Profile = DefaultProfile
	}
	b.Debug = b.Profile != "release"
	if raw := deps.get(EnvDebug); raw != "" {
		if v, err := strconv.ParseBool(raw); err != nil {
			ignoreParameter(deps, EnvDebug, raw)
		} else {
			b.Debug = v
		}
	}
	if raw := deps.get(EnvNumJobs); raw != "" {
		if n, err := strconv.Atoi(raw); err != nil || n < 1 {
			ignoreParameter(deps, EnvNumJobs, raw)
		} else {
			b.NumJobs = n
		}
	}
	if deps.get(EnvSourceDate) != "" {
		b.NumJobs = 1
	}
	return b
}

func ignoreParameter(deps Deps, key, value string) {
	deps.Logger.Warn("ignoring invalid build parameter", "probe", environmentProbe, "variable", key, "value", value)
}

// ParseFeatures splits a comma separated feature list into an ordered set
// and its lowercase counterpart. Blank entries are dropped and the first
// occurrence of a duplicate wins.
func ParseFeatures(raw string) (names, lower []string) {
	names, lower = []string{}, []string{}
	seen := map[string]bool{}
	seenLower := map[string]bool{}
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		names = append(names, f)
		if l := strings.ToLower(f); !seenLower[l] {
			seenLower[l] = true
			lower = append(lower, l)
		}
	}
	return names, lower
}
