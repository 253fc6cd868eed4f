package probe

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/flarebyte/buildfacts/internal/facts"
)

// ParseVersion decomposes a MAJOR.MINOR.PATCH[-pre][+build] version.
func ParseVersion(v string) (facts.Version, error) {
	sv := "v" + strings.TrimPrefix(v, "v")
	if !semver.IsValid(sv) {
		return facts.Version{}, fmt.Errorf("%w: %q is not a semantic version", ErrInvalidParameter, v)
	}
	core := strings.TrimPrefix(sv, "v")
	core, _, _ = strings.Cut(core, "+")
	core, _, _ = strings.Cut(core, "-")
	nums := strings.Split(core, ".")
	if len(nums) != 3 {
		return facts.Version{}, fmt.Errorf("%w: %q needs major, minor and patch", ErrInvalidParameter, v)
	}
	var out facts.Version
	for i, dst := range []*uint64{&out.Major, &out.Minor, &out.Patch} {
		n, err := strconv.ParseUint(nums[i], 10, 64)
		if err != nil {
			return facts.Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidParameter, v, err)
		}
		*dst = n
	}
	out.Pre = strings.TrimPrefix(semver.Prerelease(sv), "-")
	out.Build = strings.TrimPrefix(semver.Build(sv), "+")
	return out, nil
}
