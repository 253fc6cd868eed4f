// Package factfile dumps a FactSet as canonical YAML or JSON.
//
// Keys are sorted at every level so that the same FactSet always produces
// the same bytes. Sections whose capability is disabled are left out;
// absent optional facts are null.
package factfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flarebyte/buildfacts/internal/facts"
)

// Format selects the encoding.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case YAML, JSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("invalid format: %q (expected yaml or json)", s)
}

// Marshal encodes fs in the given format.
func Marshal(fs facts.FactSet, f Format) ([]byte, error) {
	m := ToMap(fs)
	switch f {
	case YAML:
		return marshalYAML(m)
	case JSON:
		b, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	return nil, fmt.Errorf("invalid format: %q", f)
}

// ToMap converts fs into plain maps, slices and scalars.
func ToMap(fs facts.FactSet) map[string]any {
	m := map[string]any{"capabilities": list(fs.Capabilities.Names())}
	if p := fs.Package; p != nil && fs.Enabled(facts.CapEnv) {
		m["package"] = map[string]any{
			"name":        p.Name,
			"version":     p.Version,
			"description": p.Description,
			"homepage":    p.Homepage,
			"authors":     list(p.Authors),
			"license":     p.License,
			"repository":  p.Repository,
		}
	}
	if b := fs.Build; b != nil && fs.Enabled(facts.CapEnv) {
		m["build"] = map[string]any{"profile": b.Profile, "debug": b.Debug, "numJobs": b.NumJobs}
	}
	if t := fs.Target; t != nil && fs.Enabled(facts.CapEnv) {
		target := map[string]any{"triple": t.Triple, "host": t.Host}
		if fs.Enabled(facts.CapCfg) {
			target["arch"] = t.Arch
			target["vendor"] = t.Vendor
			target["os"] = t.OS
			target["env"] = t.Env
			target["family"] = t.Family
			target["unix"] = t.Unix
			target["endian"] = t.Endian
			target["pointerWidth"] = t.PointerWidth
		}
		m["target"] = target
	}
	if v := fs.Version; v != nil && fs.Enabled(facts.CapSemver) {
		m["version"] = map[string]any{"major": v.Major, "minor": v.Minor, "patch": v.Patch, "pre": v.Pre, "build": v.Build}
	}
	if f := fs.Features; f != nil && fs.Enabled(facts.CapFeatures) {
		m["features"] = map[string]any{"names": list(f.Names), "lowercase": list(f.Lowercase)}
	}
	if c := fs.Compiler; c != nil && fs.Enabled(facts.CapCompiler) {
		m["compiler"] = map[string]any{
			"command":             c.Command,
			"version":             c.Version,
			"versionNumber":       c.VersionNumber,
			"docGenerator":        optional(c.DocCommand),
			"docGeneratorVersion": optional(c.DocVersion),
		}
	}
	if fs.Enabled(facts.CapGit) {
		g := fs.Git
		if g == nil {
			g = &facts.Git{}
		}
		var dirty any
		if g.Dirty != nil {
			dirty = *g.Dirty
		}
		m["git"] = map[string]any{
			"version":         optional(g.Describe),
			"headRef":         optional(g.HeadRef),
			"commitHash":      optional(g.CommitHash),
			"commitHashShort": optional(g.CommitHashShort),
			"dirty":           dirty,
		}
	}
	if fs.Enabled(facts.CapCI) {
		m["ci"] = optional(fs.CIName())
	}
	if d := fs.Deps; d != nil && fs.Enabled(facts.CapDependencies) {
		deps := map[string]any{"all": pairs(d.All)}
		if fs.Enabled(facts.CapDependencyTree) {
			deps["direct"] = pairs(d.Direct)
			deps["indirect"] = pairs(d.Indirect)
		}
		m["dependencies"] = deps
	}
	if !fs.BuiltAt.IsZero() && fs.Enabled(facts.CapTime) {
		m["builtAt"] = fs.BuiltAt.UTC().Format(time.RFC3339)
	}
	if len(fs.Custom) > 0 && fs.Enabled(facts.CapCustom) {
		custom := map[string]any{}
		for _, c := range fs.Custom {
			custom[c.Name] = c.Value
		}
		m["custom"] = custom
	}
	return m
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func list(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

func pairs(d []facts.Dependency) []any {
	out := make([]any, len(d))
	for i, x := range d {
		out[i] = map[string]any{"name": x.Name, "version": x.Version}
	}
	return out
}

func marshalYAML(m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(canonicalNode(m)); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	return append(out, '\n'), nil
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func scalarFrom(v any) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}

func canonicalNode(v any) *yaml.Node {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case string:
		return scalarNode(x)
	case map[string]any:
		return canonicalMapNode(x)
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, it := range x {
			n.Content = append(n.Content, canonicalNode(it))
		}
		return n
	default:
		return scalarFrom(x)
	}
}

func canonicalMapNode(m map[string]any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Content = append(n.Content, scalarNode(k), canonicalNode(m[k]))
	}
	return n
}
