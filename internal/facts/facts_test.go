package facts

import (
	"reflect"
	"testing"

	"github.com/flarebyte/buildfacts/ci"
)

func TestDefaultCapabilities(t *testing.T) {
	c := DefaultCapabilities()
	for _, k := range []Capability{CapEnv, CapGit, CapCI, CapCompiler, CapTime, CapSemver} {
		if !c.Enabled(k) {
			t.Fatalf("%s should be enabled by default", k)
		}
	}
	for _, k := range []Capability{CapDependencies, CapDependencyTree, CapCustom} {
		if c.Enabled(k) {
			t.Fatalf("%s should be disabled by default", k)
		}
	}
}

func TestDependencyTreeImpliesDependencies(t *testing.T) {
	c := Capabilities{CapDependencyTree: true}
	if !c.Enabled(CapDependencies) {
		t.Fatalf("dependencyTree should imply dependencies")
	}
	names := c.Names()
	if !reflect.DeepEqual(names, []string{"dependencies", "dependencyTree"}) {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := DefaultCapabilities()
	b := a.Clone()
	b[CapGit] = false
	if !a.Enabled(CapGit) {
		t.Fatalf("clone mutated original")
	}
}

func TestIsKnown(t *testing.T) {
	if !IsKnown("git") || IsKnown("gti") {
		t.Fatalf("unexpected IsKnown result")
	}
}

func TestCINameAndSortedCustom(t *testing.T) {
	var fs FactSet
	if fs.CIName() != nil {
		t.Fatalf("expected absent CI name")
	}
	p := ci.GitLab
	fs.CI = &p
	if got := fs.CIName(); got == nil || *got != "GitLab" {
		t.Fatalf("unexpected CI name: %v", got)
	}
	fs.Custom = []CustomFact{{Name: "b", Value: "2"}, {Name: "a", Value: "1"}}
	got := fs.SortedCustom()
	if got[0].Name != "a" || fs.Custom[0].Name != "b" {
		t.Fatalf("SortedCustom must sort a copy: %+v / %+v", got, fs.Custom)
	}
}
