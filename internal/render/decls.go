package render

import (
	"strings"
	"time"

	"github.com/flarebyte/buildfacts/internal/facts"
	"github.com/flarebyte/buildfacts/internal/literal"
)

// declaration is one row of the output table. value reports false when the
// section it reads was not collected.
type declaration struct {
	name  string
	doc   string
	gate  facts.Capability
	value func(fs facts.FactSet) (Value, bool)
}

func str(s string) Value { return Value{Kind: String, Str: s} }
func optStr(s *string) Value { return Value{Kind: OptString, OptStr: s} }
func boolean(b bool) Value { return Value{Kind: Bool, Bool: b} }
func optBool(b *bool) Value { return Value{Kind: OptBool, OptBool: b} }
func uint64Value(n uint64) Value { return Value{Kind: Int, Uint: n} }
func int64Value(n int64) Value { return Value{Kind: Int64, Int64: n} }
func list(items []string) Value { return Value{Kind: StringList, List: items} }
func pairs(d []facts.Dependency) Value {
	p := make([]literal.Pair, len(d))
	for i, x := range d {
		p[i] = literal.Pair{Name: x.Name, Version: x.Version}
	}
	return Value{Kind: PairList, Pairs: p}
}

func pkg(f func(*facts.Package) Value) func(facts.FactSet) (Value, bool) {
	return func(fs facts.FactSet) (Value, bool) {
		if fs.Package == nil {
			return Value{}, false
		}
		return f(fs.Package), true
	}
}

func target(f func(*facts.Target) Value) func(facts.FactSet) (Value, bool) {
	return func(fs facts.FactSet) (Value, bool) {
		if fs.Target == nil {
			return Value{}, false
		}
		return f(fs.Target), true
	}
}

func build(f func(*facts.Build) Value) func(facts.FactSet) (Value, bool) {
	return func(fs facts.FactSet) (Value, bool) {
		if fs.Build == nil {
			return Value{}, false
		}
		return f(fs.Build), true
	}
}

func version(f func(*facts.Version) Value) func(facts.FactSet) (Value, bool) {
	return func(fs facts.FactSet) (Value, bool) {
		if fs.Version == nil {
			return Value{}, false
		}
		return f(fs.Version), true
	}
}

func features(f func(*facts.Features) Value) func(facts.FactSet) (Value, bool) {
	return func(fs facts.FactSet) (Value, bool) {
		if fs.Features == nil {
			return Value{}, false
		}
		return f(fs.Features), true
	}
}

func compiler(f func(*facts.Compiler) Value) func(facts.FactSet) (Value, bool) {
	return func(fs facts.FactSet) (Value, bool) {
		if fs.Compiler == nil {
			return Value{}, false
		}
		return f(fs.Compiler), true
	}
}

// git always renders: missing git facts become absent markers.
func git(f func(*facts.Git) Value) func(facts.FactSet) (Value, bool) {
	return func(fs facts.FactSet) (Value, bool) {
		g := fs.Git
		if g == nil {
			g = &facts.Git{}
		}
		return f(g), true
	}
}

func dependencies(f func(*facts.Dependencies) []facts.Dependency) func(facts.FactSet) (Value, bool) {
	return func(fs facts.FactSet) (Value, bool) {
		if fs.Deps == nil {
			return Value{}, false
		}
		return pairs(f(fs.Deps)), true
	}
}

func builtAt(f func(time.Time) Value) func(facts.FactSet) (Value, bool) {
	return func(fs facts.FactSet) (Value, bool) {
		if fs.BuiltAt.IsZero() {
			return Value{}, false
		}
		return f(fs.BuiltAt.UTC()), true
	}
}

func joined(items []string) Value { return str(strings.Join(items, ", ")) }

// declarations is the output table, in output order.
var declarations = []declaration{
	{"PkgName", "is the name of the package.", facts.CapEnv, pkg(func(p *facts.Package) Value { return str(p.Name) })},
	{"PkgVersion", "is the full version of the package.", facts.CapEnv, pkg(func(p *facts.Package) Value { return str(p.Version) })},
	{"PkgDescription", "is the description of the package.", facts.CapEnv, pkg(func(p *facts.Package) Value { return str(p.Description) })},
	{"PkgHomepage", "is the homepage of the package.", facts.CapEnv, pkg(func(p *facts.Package) Value { return str(p.Homepage) })},
	{"PkgAuthors", "lists the authors of the package.", facts.CapEnv, pkg(func(p *facts.Package) Value { return list(p.Authors) })},
	{"PkgAuthorsStr", "is PkgAuthors joined with \", \".", facts.CapEnv, pkg(func(p *facts.Package) Value { return joined(p.Authors) })},
	{"PkgLicense", "is the license of the package.", facts.CapEnv, pkg(func(p *facts.Package) Value { return str(p.License) })},
	{"PkgRepository", "is the source repository of the package.", facts.CapEnv, pkg(func(p *facts.Package) Value { return str(p.Repository) })},
	{"Target", "is the target triple that was compiled for.", facts.CapEnv, target(func(t *facts.Target) Value { return str(t.Triple) })},
	{"Host", "is the host triple of the compiler.", facts.CapEnv, target(func(t *facts.Target) Value { return str(t.Host) })},
	{"Profile", "is the build profile, \"debug\" or \"release\".", facts.CapEnv, build(func(b *facts.Build) Value { return str(b.Profile) })},
	{"Debug", "reports whether the build carries debug information.", facts.CapEnv, build(func(b *facts.Build) Value { return boolean(b.Debug) })},
	{"NumJobs", "is the parallelism the build was run with.", facts.CapEnv, build(func(b *facts.Build) Value { return uint64Value(uint64(b.NumJobs)) })},

	{"PkgVersionMajor", "is the major component of PkgVersion.", facts.CapSemver, version(func(v *facts.Version) Value { return uint64Value(v.Major) })},
	{"PkgVersionMinor", "is the minor component of PkgVersion.", facts.CapSemver, version(func(v *facts.Version) Value { return uint64Value(v.Minor) })},
	{"PkgVersionPatch", "is the patch component of PkgVersion.", facts.CapSemver, version(func(v *facts.Version) Value { return uint64Value(v.Patch) })},
	{"PkgVersionPre", "is the pre-release part of PkgVersion.", facts.CapSemver, version(func(v *facts.Version) Value { return str(v.Pre) })},
	{"PkgVersionBuild", "is the build metadata part of PkgVersion.", facts.CapSemver, version(func(v *facts.Version) Value { return str(v.Build) })},

	{"Features", "lists the enabled features.", facts.CapFeatures, features(func(f *facts.Features) Value { return list(f.Names) })},
	{"FeaturesStr", "is Features joined with \", \".", facts.CapFeatures, features(func(f *facts.Features) Value { return joined(f.Names) })},
	{"FeaturesLowercase", "lists the enabled features in lowercase.", facts.CapFeatures, features(func(f *facts.Features) Value { return list(f.Lowercase) })},
	{"FeaturesLowercaseStr", "is FeaturesLowercase joined with \", \".", facts.CapFeatures, features(func(f *facts.Features) Value { return joined(f.Lowercase) })},

	{"CfgTargetArch", "is the target CPU architecture.", facts.CapCfg, target(func(t *facts.Target) Value { return str(t.Arch) })},
	{"CfgTargetVendor", "is the target vendor.", facts.CapCfg, target(func(t *facts.Target) Value { return str(t.Vendor) })},
	{"CfgOS", "is the target operating system.", facts.CapCfg, target(func(t *facts.Target) Value { return str(t.OS) })},
	{"CfgEnv", "is the target environment or ABI.", facts.CapCfg, target(func(t *facts.Target) Value { return str(t.Env) })},
	{"CfgFamily", "is the target family: unix, windows or wasm.", facts.CapCfg, target(func(t *facts.Target) Value { return str(t.Family) })},
	{"CfgUnix", "reports whether the target is unix-like.", facts.CapCfg, target(func(t *facts.Target) Value { return boolean(t.Unix) })},
	{"CfgEndian", "is the target endianness.", facts.CapCfg, target(func(t *facts.Target) Value { return str(t.Endian) })},
	{"CfgPointerWidth", "is the target pointer width in bits.", facts.CapCfg, target(func(t *facts.Target) Value { return str(t.PointerWidth) })},

	{"Compiler", "is the compiler command.", facts.CapCompiler, compiler(func(c *facts.Compiler) Value { return str(c.Command) })},
	{"CompilerVersion", "is the version banner of the compiler.", facts.CapCompiler, compiler(func(c *facts.Compiler) Value { return str(c.Version) })},
	{"CompilerVersionNumber", "is the version number parsed from CompilerVersion.", facts.CapCompiler, compiler(func(c *facts.Compiler) Value { return str(c.VersionNumber) })},
	{"DocGenerator", "is the documentation generator command, if any.", facts.CapCompiler, compiler(func(c *facts.Compiler) Value { return optStr(c.DocCommand) })},
	{"DocGeneratorVersion", "is the version banner of DocGenerator, if any.", facts.CapCompiler, compiler(func(c *facts.Compiler) Value { return optStr(c.DocVersion) })},

	{"GitVersion", "is the tag at HEAD, or the short commit hash when HEAD is not tagged.", facts.CapGit, git(func(g *facts.Git) Value { return optStr(g.Describe) })},
	{"GitHeadRef", "is the reference HEAD points to, such as refs/heads/main. Nil when detached.", facts.CapGit, git(func(g *facts.Git) Value { return optStr(g.HeadRef) })},
	{"GitCommitHash", "is the full hash of HEAD.", facts.CapGit, git(func(g *facts.Git) Value { return optStr(g.CommitHash) })},
	{"GitCommitHashShort", "is the abbreviated hash of HEAD.", facts.CapGit, git(func(g *facts.Git) Value { return optStr(g.CommitHashShort) })},
	{"GitDirty", "reports whether the working tree had uncommitted changes.", facts.CapGit, git(func(g *facts.Git) Value { return optBool(g.Dirty) })},

	{"CIPlatform", "is the continuous integration platform the build ran on, if any.", facts.CapCI, func(fs facts.FactSet) (Value, bool) { return optStr(fs.CIName()), true }},

	{"Dependencies", "lists the resolved dependencies as (name, version) pairs.", facts.CapDependencies, dependencies(func(d *facts.Dependencies) []facts.Dependency { return d.All })},
	{"DirectDependencies", "lists the dependencies required directly by the package.", facts.CapDependencyTree, dependencies(func(d *facts.Dependencies) []facts.Dependency { return d.Direct })},
	{"IndirectDependencies", "lists the dependencies only required transitively.", facts.CapDependencyTree, dependencies(func(d *facts.Dependencies) []facts.Dependency { return d.Indirect })},

	{"BuiltTimeUTC", "is the build time in RFC 1123 format with numeric zone.", facts.CapTime, builtAt(func(t time.Time) Value { return str(t.Format(time.RFC1123Z)) })},
	{"BuiltTimeUnix", "is the build time in seconds since the Unix epoch.", facts.CapTime, builtAt(func(t time.Time) Value { return int64Value(t.Unix()) })},
}

// customValue maps a script result onto a Kind.
func customValue(v any) (Value, bool) {
	switch x := v.(type) {
	case string:
		return str(x), true
	case bool:
		return boolean(x), true
	case int64:
		return int64Value(x), true
	}
	return Value{}, false
}
