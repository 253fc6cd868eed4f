package config

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/flarebyte/buildfacts/internal/facts"
)

// ParseCapability validates a capability name. Unknown names get a
// "did you mean" hint.
func ParseCapability(name string) (facts.Capability, error) {
	c := facts.Capability(strings.TrimSpace(name))
	if facts.IsKnown(c) {
		return c, nil
	}
	return "", fmt.Errorf("unknown capability: %s%s", name, suggestion(name, capabilityNames()))
}

// ApplyToggles switches capabilities on, then off. Names may be repeated
// or comma separated, as given on the command line.
func (c *Config) ApplyToggles(enable, disable []string) error {
	caps := c.Capabilities.Clone()
	for _, set := range []struct {
		names []string
		on    bool
	}{{enable, true}, {disable, false}} {
		for _, raw := range set.names {
			for _, n := range strings.Split(raw, ",") {
				if strings.TrimSpace(n) == "" {
					continue
				}
				k, err := ParseCapability(n)
				if err != nil {
					return err
				}
				caps[k] = set.on
			}
		}
	}
	c.Capabilities = caps
	return nil
}

func capabilityNames() []string {
	out := make([]string, 0, len(facts.AllCapabilities))
	for _, k := range facts.AllCapabilities {
		out = append(out, string(k))
	}
	return out
}

// suggestion returns " (did you mean X?)" for the best fuzzy match of s,
// or "" when nothing is close.
func suggestion(s string, candidates []string) string {
	matches := fuzzy.Find(strings.TrimSpace(s), candidates)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %s?)", matches[0].Str)
}
