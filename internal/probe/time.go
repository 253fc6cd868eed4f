package probe

import (
	"context"
	"strconv"
	"time"

	"github.com/flarebyte/buildfacts/internal/facts"
)

const timeProbe = "time"

func init() { Register(timeProbe, facts.CapTime, timeRunner) }

// timeRunner honors SOURCE_DATE_EPOCH for reproducible builds. An
// unparsable value falls back to the clock.
func timeRunner(_ context.Context, in facts.FactSet, deps Deps) (facts.FactSet, Outcome) {
	out := in
	out.BuiltAt = deps.Now().UTC().Truncate(time.Second)
	if raw := deps.get(EnvSourceDate); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			deps.Logger.Warn("ignoring invalid SOURCE_DATE_EPOCH", "probe", timeProbe, "value", raw)
		} else {
			out.BuiltAt = time.Unix(secs, 0).UTC()
		}
	}
	return out, present(timeProbe)
}
