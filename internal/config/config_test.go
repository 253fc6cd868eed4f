package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/flarebyte/buildfacts/internal/facts"
)

func writeCfg(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	return p
}

func TestLoadFullConfig(t *testing.T) {
	p := writeCfg(t, `
configVersion: "1"
output: { path: "facts_gen.go", package: "buildinfo" }
capabilities: { git: false, dependencyTree: true, custom: true }
compiler: { command: "tinygo", versionArgs: ["version"] }
docGenerator: { command: "godoc" }
dependencies: { lockfile: "Cargo.lock" }
manifest: "meta.yaml"
custom: { inline: "return { Channel = 'beta' }", timeoutMs: 50 }
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Output.Path != "facts_gen.go" || !c.Output.HasPackage || c.Output.Package != "buildinfo" {
		t.Fatalf("output: %+v", c.Output)
	}
	if c.Capabilities.Enabled(facts.CapGit) || !c.Capabilities.Enabled(facts.CapDependencies) || !c.Capabilities.Enabled(facts.CapCustom) {
		t.Fatalf("capabilities: %v", c.Capabilities)
	}
	if !c.Capabilities.Enabled(facts.CapCI) {
		t.Fatalf("unset capabilities must keep defaults")
	}
	if c.Compiler.Command != "tinygo" || !reflect.DeepEqual(c.Compiler.VersionArgs, []string{"version"}) {
		t.Fatalf("compiler: %+v", c.Compiler)
	}
	if !c.DocGenerator.HasCommand || c.DocGenerator.Command != "godoc" {
		t.Fatalf("docGenerator: %+v", c.DocGenerator)
	}
	if c.Lockfile != "Cargo.lock" || c.Manifest != "meta.yaml" {
		t.Fatalf("lockfile/manifest: %q %q", c.Lockfile, c.Manifest)
	}
	if !c.Custom.HasInline || c.Custom.TimeoutMs != 50 {
		t.Fatalf("custom: %+v", c.Custom)
	}
	if c.Source != p {
		t.Fatalf("source = %q", c.Source)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name, content, want string
	}{
		{"missing version", `output: {}`, "missing required field: configVersion"},
		{"typo capability", `configVersion: "1"
capabilities: { dependecies: true }`, "unknown capability: dependecies (did you mean dependencies?)"},
		{"typo field", `configVersion: "1"
compilr: {}`, "unknown config field: compilr (did you mean compiler?)"},
		{"bad kind", `configVersion: "1"
manifest: 3`, "invalid type for field: manifest (expected string)"},
		{"bad timeout", `configVersion: "1"
custom: { timeoutMs: 0 }`, "custom.timeoutMs: must be > 0"},
		{"syntax", `configVersion: `, "invalid config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeCfg(t, tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsNonCue(t *testing.T) {
	if _, err := Load("buildfacts.yaml"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	c, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if !reflect.DeepEqual(c, Default()) {
		t.Fatalf("expected defaults, got %+v", c)
	}
}

func TestApplyToggles(t *testing.T) {
	c := Default()
	if err := c.ApplyToggles([]string{"dependencies,custom"}, []string{"git", "ci"}); err != nil {
		t.Fatalf("toggles: %v", err)
	}
	if !c.Capabilities.Enabled(facts.CapDependencies) || !c.Capabilities.Enabled(facts.CapCustom) {
		t.Fatalf("enable failed: %v", c.Capabilities)
	}
	if c.Capabilities.Enabled(facts.CapGit) || c.Capabilities.Enabled(facts.CapCI) {
		t.Fatalf("disable failed: %v", c.Capabilities)
	}
	err := c.ApplyToggles(nil, []string{"compilr"})
	if err == nil || !strings.Contains(err.Error(), "did you mean compiler?") {
		t.Fatalf("expected suggestion, got %v", err)
	}
}
