// Package profiling wraps github.com/pkg/profile behind the --profile flag.
package profiling

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pkg/profile"
)

var modes = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

type noop struct{}

func (noop) Stop() {}

// Modes lists the accepted profiling modes, sorted.
func Modes() []string { return slices.Sorted(maps.Keys(modes)) }

// Start begins profiling in mode, writing into dir (the working directory
// when empty). An empty mode is a no-op.
func Start(mode, dir string) (Stopper, error) {
	if mode == "" {
		return noop{}, nil
	}
	fn, ok := modes[mode]
	if !ok {
		return nil, fmt.Errorf("unknown profile mode %q (want one of %s)", mode, strings.Join(Modes(), ", "))
	}
	opts := []func(*profile.Profile){fn, profile.Quiet, profile.NoShutdownHook}
	if dir != "" {
		opts = append(opts, profile.ProfilePath(dir))
	}
	return profile.Start(opts...), nil
}
