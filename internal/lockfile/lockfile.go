// Package lockfile reads resolved dependency sets.
//
// Two formats are understood: go.sum (paired with its go.mod for the
// direct/indirect split) and TOML lock files made of [[package]] tables
// that list their own dependencies, such as Cargo.lock.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flarebyte/buildfacts/internal/facts"
)

var (
	ErrNotFound = errors.New("lock file not found")
	ErrInvalid  = errors.New("invalid lock file")
)

// GoSumName selects the go.sum reader; every other name is read as TOML.
const GoSumName = "go.sum"

// Find returns the first file called name in start or one of its ancestors.
func Find(start, name string) (string, error) {
	cur, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		p := filepath.Join(cur, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		cur = parent
	}
}

// Load reads and parses the lock file at path. In deep mode the direct and
// indirect sets are filled as well.
func Load(path string, deep bool) (facts.Dependencies, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return facts.Dependencies{}, err
	}
	if filepath.Base(path) == GoSumName {
		var mod []byte
		if deep {
			modPath := filepath.Join(filepath.Dir(path), "go.mod")
			mod, err = os.ReadFile(modPath)
			if err != nil {
				return facts.Dependencies{}, fmt.Errorf("%w: go.mod next to go.sum: %v", ErrInvalid, err)
			}
		}
		return ParseGoSum(data, mod, deep)
	}
	return ParseTOML(data, deep)
}

type key struct{ name, version string }

func (k key) dep() facts.Dependency { return facts.Dependency{Name: k.name, Version: k.version} }

// splitIndirect returns the entries of all that are not in direct, keeping
// the order of all.
func splitIndirect(all, direct []facts.Dependency) []facts.Dependency {
	seen := make(map[facts.Dependency]struct{}, len(direct))
	for _, d := range direct {
		seen[d] = struct{}{}
	}
	out := []facts.Dependency{}
	for _, d := range all {
		if _, ok := seen[d]; !ok {
			out = append(out, d)
		}
	}
	return out
}
