package render

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/flarebyte/buildfacts/ci"
	"github.com/flarebyte/buildfacts/internal/facts"
)

func ptr[T any](v T) *T { return &v }

func sampleFacts() facts.FactSet {
	p := ci.GitLab
	return facts.FactSet{
		Capabilities: facts.Capabilities{
			facts.CapEnv: true, facts.CapSemver: true, facts.CapFeatures: true, facts.CapCfg: true,
			facts.CapCompiler: true, facts.CapGit: true, facts.CapCI: true,
			facts.CapDependencyTree: true, facts.CapTime: true, facts.CapCustom: true,
		},
		Package: &facts.Package{
			Name:        "demo",
			Version:     "1.2.3-alpha+7",
			Description: "says \"hi\"\n\tand \\ more",
			Authors:     []string{"Ada", "Grace"},
		},
		Version:  &facts.Version{Major: 1, Minor: 2, Patch: 3, Pre: "alpha", Build: "7"},
		Target:   &facts.Target{Triple: "x86_64-unknown-linux-gnu", Host: "x86_64-unknown-linux-gnu", Arch: "x86_64", Vendor: "unknown", OS: "linux", Env: "gnu", Family: "unix", Unix: true, Endian: "little", PointerWidth: "64"},
		Build:    &facts.Build{Profile: "release", NumJobs: 4},
		Features: &facts.Features{Names: []string{"A", "B"}, Lowercase: []string{"a", "b"}},
		Compiler: &facts.Compiler{Command: "go", Version: "go version go1.24.1 linux/amd64", VersionNumber: "1.24.1"},
		Git:      &facts.Git{Describe: ptr("v1.2.3"), HeadRef: ptr("refs/heads/main"), CommitHash: ptr("0123456789abcdef0123456789abcdef01234567"), CommitHashShort: ptr("0123456"), Dirty: ptr(true)},
		CI:       &p,
		Deps: &facts.Dependencies{
			All:      []facts.Dependency{{Name: "rand", Version: "0.7.3"}, {Name: "rand", Version: "0.8.5"}},
			Direct:   []facts.Dependency{{Name: "rand", Version: "0.8.5"}},
			Indirect: []facts.Dependency{{Name: "rand", Version: "0.7.3"}},
		},
		BuiltAt: time.Unix(1700000000, 0).UTC(),
		Custom:  []facts.CustomFact{{Name: "Zed", Value: int64(-4)}, {Name: "Channel", Value: "beta"}, {Name: "Canary", Value: false}},
	}
}

// declsOf maps every declared identifier to the source of its value, or
// to "type <T>" when it has none.
func declsOf(t *testing.T, src []byte) (map[string]string, []string) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "gen.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, src)
	}
	out := map[string]string{}
	var order []string
	text := func(n ast.Node) string {
		return string(src[fset.Position(n.Pos()).Offset:fset.Position(n.End()).Offset])
	}
	for _, d := range f.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok {
			t.Fatalf("unexpected declaration %T", d)
		}
		if gd.Doc == nil {
			t.Fatalf("declaration without doc comment at %v", fset.Position(gd.Pos()))
		}
		for _, s := range gd.Specs {
			vs := s.(*ast.ValueSpec)
			name := vs.Names[0].Name
			order = append(order, name)
			if len(vs.Values) == 0 {
				out[name] = "type " + text(vs.Type)
				continue
			}
			out[name] = text(vs.Values[0])
		}
	}
	return out, order
}

func unquote(t *testing.T, lit string) string {
	t.Helper()
	s, err := strconv.Unquote(lit)
	if err != nil {
		t.Fatalf("not a string literal: %s", lit)
	}
	return s
}

func TestRenderAllFacts(t *testing.T) {
	fs := sampleFacts()
	src, err := Render(fs, "buildinfo")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(src, []byte(Header+"\n\npackage buildinfo\n")) {
		t.Fatalf("unexpected header:\n%s", src)
	}
	d, order := declsOf(t, src)

	if unquote(t, d["PkgDescription"]) != fs.Package.Description {
		t.Fatalf("description did not round-trip: %s", d["PkgDescription"])
	}
	checks := map[string]string{
		"PkgName":              `"demo"`,
		"PkgAuthors":           `[2]string{"Ada", "Grace"}`,
		"PkgAuthorsStr":        `"Ada, Grace"`,
		"PkgVersionMajor":      `1`,
		"PkgVersionPre":        `"alpha"`,
		"PkgVersionBuild":      `"7"`,
		"Debug":                `false`,
		"NumJobs":              `4`,
		"FeaturesLowercase":    `[2]string{"a", "b"}`,
		"FeaturesStr":          `"A, B"`,
		"CfgEnv":               `"gnu"`,
		"CfgUnix":              `true`,
		"DocGenerator":         `type *string`,
		"GitHeadRef":           `func() *string { v := "refs/heads/main"; return &v }()`,
		"GitDirty":             `func() *bool { v := true; return &v }()`,
		"CIPlatform":           `func() *string { v := "GitLab"; return &v }()`,
		"Dependencies":         `[2][2]string{{"rand", "0.7.3"}, {"rand", "0.8.5"}}`,
		"DependenciesStr":      `"rand 0.7.3, rand 0.8.5"`,
		"DirectDependencies":   `[1][2]string{{"rand", "0.8.5"}}`,
		"IndirectDependencies": `[1][2]string{{"rand", "0.7.3"}}`,
		"BuiltTimeUTC":         `"Tue, 14 Nov 2023 22:13:20 +0000"`,
		"BuiltTimeUnix":        `1700000000`,
		"CustomChannel":        `"beta"`,
		"CustomCanary":         `false`,
		"CustomZed":            `-4`,
	}
	for name, want := range checks {
		if got := d[name]; got != want {
			t.Errorf("%s = %s, want %s", name, got, want)
		}
	}
	if !strings.Contains(string(src), "const BuiltTimeUnix int64 = 1700000000") {
		t.Fatalf("BuiltTimeUnix should be an int64 constant")
	}
	if order[0] != "PkgName" || order[len(order)-1] != "CustomZed" {
		t.Fatalf("unexpected order: %v", order)
	}
	if i, j := indexOf(order, "CustomCanary"), indexOf(order, "CustomChannel"); i > j {
		t.Fatalf("custom facts must be sorted: %v", order)
	}
}

func indexOf(list []string, s string) int {
	for i, x := range list {
		if x == s {
			return i
		}
	}
	return -1
}

func TestRenderIsDeterministic(t *testing.T) {
	a, err := Render(sampleFacts(), "main")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Render(sampleFacts(), "main")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("rendering twice differs")
	}
}

func TestRenderAbsentMarkers(t *testing.T) {
	fs := sampleFacts()
	fs.Git = nil
	fs.CI = nil
	src, err := Render(fs, "main")
	if err != nil {
		t.Fatal(err)
	}
	d, _ := declsOf(t, src)
	for _, name := range []string{"GitVersion", "GitHeadRef", "GitCommitHash", "GitCommitHashShort", "CIPlatform"} {
		if d[name] != "type *string" {
			t.Errorf("%s = %s, want absent *string", name, d[name])
		}
	}
	if d["GitDirty"] != "type *bool" {
		t.Errorf("GitDirty = %s", d["GitDirty"])
	}
}

func TestRenderCapabilityGates(t *testing.T) {
	fs := sampleFacts()
	fs.Capabilities = facts.Capabilities{facts.CapEnv: true, facts.CapDependencies: true}
	src, err := Render(fs, "main")
	if err != nil {
		t.Fatal(err)
	}
	d, _ := declsOf(t, src)
	for _, gone := range []string{"GitVersion", "CIPlatform", "Compiler", "BuiltTimeUTC", "CustomChannel", "DirectDependencies", "PkgVersionMajor", "CfgOS", "Features"} {
		if _, ok := d[gone]; ok {
			t.Errorf("%s should not be rendered", gone)
		}
	}
	if _, ok := d["Dependencies"]; !ok {
		t.Errorf("Dependencies should be rendered")
	}
}

func TestRenderEmptyLists(t *testing.T) {
	fs := sampleFacts()
	fs.Features = &facts.Features{Names: []string{}, Lowercase: []string{}}
	fs.Deps = &facts.Dependencies{}
	src, err := Render(fs, "main")
	if err != nil {
		t.Fatal(err)
	}
	d, _ := declsOf(t, src)
	if d["Features"] != "[0]string{}" || d["Dependencies"] != "[0][2]string{}" || d["DependenciesStr"] != `""` {
		t.Fatalf("empty lists: %s / %s / %s", d["Features"], d["Dependencies"], d["DependenciesStr"])
	}
}

func TestRenderRejectsBadPackage(t *testing.T) {
	for _, pkg := range []string{"", "func", "my-pkg", "_"} {
		if _, err := Render(sampleFacts(), pkg); !errors.Is(err, ErrPackageName) {
			t.Fatalf("%q: expected ErrPackageName, got %v", pkg, err)
		}
	}
}
