// Package facts holds the aggregate result of one collection run.
package facts

import (
	"sort"
	"time"

	"github.com/flarebyte/buildfacts/ci"
)

// Package is the manifest metadata of the package being built.
type Package struct {
	Name        string
	Version     string
	Description string
	Homepage    string
	Authors     []string
	License     string
	Repository  string
}

// Version is the semantic decomposition of Package.Version.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
	Pre   string
	Build string
}

// Target describes the platform being compiled for.
type Target struct {
	Triple       string
	Host         string
	Arch         string
	Vendor       string
	OS           string
	Env          string
	Family       string
	Unix         bool
	Endian       string
	PointerWidth string
}

// Build holds profile related parameters.
type Build struct {
	Profile string
	Debug   bool
	NumJobs int
}

// Features is the active feature-flag set in both spellings.
type Features struct {
	Names     []string
	Lowercase []string
}

// Compiler is the identity of the toolchain. Doc fields are nil when no
// documentation generator was available.
type Compiler struct {
	Command       string
	Version       string
	VersionNumber string
	DocCommand    *string
	DocVersion    *string
}

// Git holds the version-control facts. Each field may also come from an
// override variable, so every one of them is optional.
type Git struct {
	// Describe is the tag pointing at HEAD, or the short hash.
	Describe        *string
	HeadRef         *string
	CommitHash      *string
	CommitHashShort *string
	Dirty           *bool
}

// Dependency is one resolved (name, version) pair.
type Dependency struct {
	Name    string
	Version string
}

// Dependencies is the resolved graph flattened in traversal order.
// Direct and Indirect are only filled in deep mode.
type Dependencies struct {
	All      []Dependency
	Direct   []Dependency
	Indirect []Dependency
}

// CustomFact is a user defined value produced by a script. Value is a
// string, bool or int64.
type CustomFact struct {
	Name  string
	Value any
}

// FactSet is the aggregate of all facts. Nil sections were not collected.
// Git and CI are pointers whose nil value means "absent" when their
// capability is enabled.
type FactSet struct {
	Capabilities Capabilities

	Package  *Package
	Version  *Version
	Target   *Target
	Build    *Build
	Features *Features
	Compiler *Compiler
	Git      *Git
	CI       *ci.Platform
	Deps     *Dependencies
	BuiltAt  time.Time
	Custom   []CustomFact
}

// Enabled reports whether capability c was enabled for the run.
func (f FactSet) Enabled(c Capability) bool { return f.Capabilities.Enabled(c) }

// CIName returns the canonical platform name, or nil when absent.
func (f FactSet) CIName() *string {
	if f.CI == nil {
		return nil
	}
	s := f.CI.String()
	return &s
}

// SortedCustom returns the custom facts ordered by name.
func (f FactSet) SortedCustom() []CustomFact {
	out := append([]CustomFact(nil), f.Custom...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
