package facts

import "sort"

// Capability names one independently switchable group of facts.
type Capability string

const (
	CapEnv            Capability = "env"
	CapFeatures       Capability = "features"
	CapCfg            Capability = "cfg"
	CapSemver         Capability = "semver"
	CapCompiler       Capability = "compiler"
	CapGit            Capability = "git"
	CapCI             Capability = "ci"
	CapDependencies   Capability = "dependencies"
	CapDependencyTree Capability = "dependencyTree"
	CapTime           Capability = "time"
	CapCustom         Capability = "custom"
)

// AllCapabilities lists every capability in orchestration order.
var AllCapabilities = []Capability{
	CapEnv,
	CapFeatures,
	CapCfg,
	CapSemver,
	CapCompiler,
	CapGit,
	CapCI,
	CapDependencies,
	CapDependencyTree,
	CapTime,
	CapCustom,
}

// IsKnown reports whether c is one of AllCapabilities.
func IsKnown(c Capability) bool {
	for _, k := range AllCapabilities {
		if k == c {
			return true
		}
	}
	return false
}

// Capabilities is the set of enabled capabilities.
type Capabilities map[Capability]bool

// DefaultCapabilities enables everything except the opt-in dependency
// listing and custom facts.
func DefaultCapabilities() Capabilities {
	c := Capabilities{}
	for _, k := range AllCapabilities {
		c[k] = true
	}
	c[CapDependencies] = false
	c[CapDependencyTree] = false
	c[CapCustom] = false
	return c
}

// Enabled reports whether c is on. The deep dependency variant implies the
// flat one.
func (c Capabilities) Enabled(k Capability) bool {
	if k == CapDependencies && c[CapDependencyTree] {
		return true
	}
	return c[k]
}

// Clone returns an independent copy.
func (c Capabilities) Clone() Capabilities {
	out := make(Capabilities, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Names returns the enabled capability names, sorted.
func (c Capabilities) Names() []string {
	var out []string
	for _, k := range AllCapabilities {
		if c.Enabled(k) {
			out = append(out, string(k))
		}
	}
	sort.Strings(out)
	return out
}
