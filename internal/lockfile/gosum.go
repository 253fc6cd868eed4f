package lockfile

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/flarebyte/buildfacts/internal/facts"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// ParseGoSum lists the modules of a go.sum file in file order. Lines that
// only hash a go.mod file are skipped. In deep mode mod must hold the
// matching go.mod: its non-indirect requirements are the direct set.
func ParseGoSum(sum, mod []byte, deep bool) (facts.Dependencies, error) {
	seen := map[key]struct{}{}
	all := []facts.Dependency{}
	sc := bufio.NewScanner(bytes.NewReader(sum))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 || !strings.HasPrefix(fields[2], "h1:") {
			return facts.Dependencies{}, fmt.Errorf("%w: go.sum line %d: malformed", ErrInvalid, line)
		}
		if strings.HasSuffix(fields[1], "/go.mod") {
			continue
		}
		if err := module.Check(fields[0], fields[1]); err != nil {
			return facts.Dependencies{}, fmt.Errorf("%w: go.sum line %d: %v", ErrInvalid, line, err)
		}
		k := key{fields[0], fields[1]}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		all = append(all, k.dep())
	}
	if err := sc.Err(); err != nil {
		return facts.Dependencies{}, err
	}
	if !deep {
		return facts.Dependencies{All: all}, nil
	}

	f, err := modfile.Parse("go.mod", mod, nil)
	if err != nil {
		return facts.Dependencies{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	direct := []facts.Dependency{}
	for _, r := range f.Require {
		if r.Indirect {
			continue
		}
		d := facts.Dependency{Name: r.Mod.Path, Version: r.Mod.Version}
		if _, ok := seen[key{d.Name, d.Version}]; ok {
			direct = append(direct, d)
		}
	}
	return facts.Dependencies{All: all, Direct: direct, Indirect: splitIndirect(all, direct)}, nil
}
