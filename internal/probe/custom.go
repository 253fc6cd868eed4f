package probe

import (
	"context"
	"time"

	"github.com/flarebyte/buildfacts/internal/facts"
	"github.com/flarebyte/buildfacts/internal/luafacts"
)

const customProbe = "custom"

func init() { Register(customProbe, facts.CapCustom, customRunner) }

func customRunner(ctx context.Context, in facts.FactSet, deps Deps) (facts.FactSet, Outcome) {
	c := deps.Config.Custom
	if !c.HasInline {
		return in, absent(customProbe, "no custom script configured")
	}
	seed := ""
	if in.Package != nil {
		seed = in.Package.Name
	}
	out, err := luafacts.Run(ctx, c.Inline, scriptGlobals(in), luafacts.Options{
		Timeout: time.Duration(c.TimeoutMs) * time.Millisecond,
		Seed:    seed,
	})
	if err != nil {
		return in, fatal(customProbe, err)
	}
	res := in
	res.Custom = out
	return res, present(customProbe)
}

// scriptGlobals exposes the facts collected so far to scripts.
func scriptGlobals(fs facts.FactSet) map[string]any {
	g := map[string]any{}
	if p := fs.Package; p != nil {
		g["pkg_name"] = p.Name
		g["pkg_version"] = p.Version
		g["pkg_authors"] = p.Authors
	}
	if t := fs.Target; t != nil {
		g["target"] = t.Triple
		g["target_os"] = t.OS
		g["target_arch"] = t.Arch
	}
	if b := fs.Build; b != nil {
		g["profile"] = b.Profile
		g["debug"] = b.Debug
	}
	if f := fs.Features; f != nil {
		g["features"] = f.Names
	}
	if c := fs.Compiler; c != nil {
		g["compiler_version"] = c.VersionNumber
	}
	if gt := fs.Git; gt != nil {
		g["git_commit_hash"] = gt.CommitHash
		g["git_version"] = gt.Describe
	}
	g["ci_platform"] = fs.CIName()
	if !fs.BuiltAt.IsZero() {
		g["built_unix"] = fs.BuiltAt.Unix()
	}
	return g
}
