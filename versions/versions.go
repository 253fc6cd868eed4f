// Package versions helps programs interpret the facts generated into them.
//
//	for _, v := range versions.ParseVersions(buildinfo.Dependencies[:]) {
//		fmt.Println(v.Name, v.Canonical)
//	}
package versions

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// Version is a dependency whose version is valid semver.
type Version struct {
	Name string
	// Raw is the version as written in the lock file.
	Raw string
	// Canonical is the "vMAJOR.MINOR.PATCH[-pre]" form used for comparison.
	Canonical string
}

// Compare orders two versions by semver precedence, ignoring names.
func (v Version) Compare(o Version) int { return semver.Compare(v.Canonical, o.Canonical) }

// Major returns the "vMAJOR" prefix.
func (v Version) Major() string { return semver.Major(v.Canonical) }

// ParseVersions parses the (name, version) pairs of a generated dependency
// list. Pairs whose version is not semver are skipped.
func ParseVersions(deps [][2]string) []Version {
	out := make([]Version, 0, len(deps))
	for _, d := range deps {
		c, ok := canonical(d[1])
		if !ok {
			continue
		}
		out = append(out, Version{Name: d[0], Raw: d[1], Canonical: c})
	}
	return out
}

func canonical(raw string) (string, bool) {
	v := raw
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", false
	}
	return semver.Canonical(v), true
}

// ParseBuiltTime parses a generated BuiltTimeUTC value.
func ParseBuiltTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC1123Z, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("versions: invalid build time %q: %w", s, err)
	}
	return t.UTC(), nil
}
