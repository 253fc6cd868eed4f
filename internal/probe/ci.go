package probe

import (
	"context"

	"github.com/flarebyte/buildfacts/ci"
	"github.com/flarebyte/buildfacts/internal/facts"
)

const ciProbe = "ci"

func init() { Register(ciProbe, facts.CapCI, ciRunner) }

func ciRunner(_ context.Context, in facts.FactSet, deps Deps) (facts.FactSet, Outcome) {
	p, ok := ci.DetectFrom(ci.LookupFunc(deps.Env))
	if !ok {
		return in, absent(ciProbe, "no CI fingerprint matched")
	}
	out := in
	out.CI = &p
	return out, present(ciProbe)
}
