package lockfile

import (
	"fmt"
	"strings"

	"github.com/flarebyte/buildfacts/internal/facts"
	"github.com/pelletier/go-toml/v2"
)

type tomlLock struct {
	Version  int           `toml:"version"`
	Root     *tomlPackage  `toml:"root"`
	Packages []tomlPackage `toml:"package"`
}

type tomlPackage struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Checksum     string   `toml:"checksum"`
	Dependencies []string `toml:"dependencies"`
}

type node struct {
	key  key
	deps []key
}

// graph keeps nodes in file order.
type graph struct {
	nodes []*node
	byKey map[key]*node
}

// ParseTOML parses a [[package]] lock file. Flat mode lists every package
// in file order. Deep mode walks the graph depth-first from its roots.
func ParseTOML(data []byte, deep bool) (facts.Dependencies, error) {
	var lock tomlLock
	if err := toml.Unmarshal(data, &lock); err != nil {
		return facts.Dependencies{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	pkgs := lock.Packages
	if lock.Root != nil {
		pkgs = append([]tomlPackage{*lock.Root}, pkgs...)
	}
	for i, p := range pkgs {
		if p.Name == "" || p.Version == "" {
			return facts.Dependencies{}, fmt.Errorf("%w: package %d has no name or version", ErrInvalid, i)
		}
	}
	if !deep {
		return facts.Dependencies{All: flatPackages(pkgs)}, nil
	}
	g, err := buildGraph(pkgs)
	if err != nil {
		return facts.Dependencies{}, err
	}
	return g.walk(), nil
}

func flatPackages(pkgs []tomlPackage) []facts.Dependency {
	seen := map[key]struct{}{}
	out := []facts.Dependency{}
	for _, p := range pkgs {
		k := key{p.Name, p.Version}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k.dep())
	}
	return out
}

func buildGraph(pkgs []tomlPackage) (*graph, error) {
	g := &graph{byKey: map[key]*node{}}
	versions := map[string][]string{}
	for _, p := range pkgs {
		k := key{p.Name, p.Version}
		if _, ok := g.byKey[k]; ok {
			continue
		}
		n := &node{key: k}
		g.nodes = append(g.nodes, n)
		g.byKey[k] = n
		versions[p.Name] = append(versions[p.Name], p.Version)
	}
	for _, p := range pkgs {
		n := g.byKey[key{p.Name, p.Version}]
		if len(n.deps) > 0 {
			continue
		}
		for _, ref := range p.Dependencies {
			k, err := resolveRef(ref, versions)
			if err != nil {
				return nil, fmt.Errorf("%w: %s %s: %v", ErrInvalid, p.Name, p.Version, err)
			}
			if _, ok := g.byKey[k]; !ok {
				return nil, fmt.Errorf("%w: %s %s: unknown dependency %q", ErrInvalid, p.Name, p.Version, ref)
			}
			n.deps = append(n.deps, k)
		}
	}
	return g, nil
}

// resolveRef accepts "name", "name version" and "name version (source)".
func resolveRef(ref string, versions map[string][]string) (key, error) {
	fields := strings.Fields(ref)
	switch {
	case len(fields) == 0:
		return key{}, fmt.Errorf("empty dependency reference")
	case len(fields) == 1:
		vs := versions[fields[0]]
		if len(vs) != 1 {
			return key{}, fmt.Errorf("ambiguous or unknown dependency %q", ref)
		}
		return key{fields[0], vs[0]}, nil
	default:
		return key{fields[0], fields[1]}, nil
	}
}

func (g *graph) roots() []*node {
	incoming := map[key]bool{}
	for _, n := range g.nodes {
		for _, d := range n.deps {
			incoming[d] = true
		}
	}
	var out []*node
	for _, n := range g.nodes {
		if !incoming[n.key] {
			out = append(out, n)
		}
	}
	return out
}

// walk performs a pre-order depth-first traversal from each root in file
// order. Roots are not listed; nodes unreachable from any root (cycles)
// are walked afterwards so that every package is surfaced.
func (g *graph) walk() facts.Dependencies {
	visited := map[key]bool{}
	all := []facts.Dependency{}
	direct := []facts.Dependency{}
	directSeen := map[key]bool{}

	var visit func(n *node)
	visit = func(n *node) {
		if visited[n.key] {
			return
		}
		visited[n.key] = true
		all = append(all, n.key.dep())
		for _, d := range n.deps {
			visit(g.byKey[d])
		}
	}

	roots := g.roots()
	for _, r := range roots {
		visited[r.key] = true
	}
	for _, r := range roots {
		for _, d := range r.deps {
			if !directSeen[d] && !isRoot(roots, d) {
				directSeen[d] = true
				direct = append(direct, d.dep())
			}
			visit(g.byKey[d])
		}
	}
	for _, n := range g.nodes {
		visit(n)
	}
	return facts.Dependencies{All: all, Direct: direct, Indirect: splitIndirect(all, direct)}
}

func isRoot(roots []*node, k key) bool {
	for _, r := range roots {
		if r.key == k {
			return true
		}
	}
	return false
}
