package probe

import (
	"context"
	"errors"
	"testing"
)

type fakeTools map[string]string

func (f fakeTools) lookPath(name string) (string, error) {
	if _, ok := f[name]; !ok {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + name, nil
}

func (f fakeTools) exec(_ context.Context, _, name string, _ ...string) ([]byte, error) {
	out := f[name]
	if out == "FAIL" {
		return nil, errors.New("exit status 2")
	}
	return []byte(out), nil
}

func compilerDeps(t *testing.T, tools fakeTools, env map[string]string) Deps {
	t.Helper()
	d := testDeps(t, env)
	d.LookPath = tools.lookPath
	d.Exec = tools.exec
	return d
}

func TestCompilerProbe(t *testing.T) {
	tools := fakeTools{"go": "go version go1.24.1 linux/amd64\n", "godoc": "\n godoc v0.1\n"}
	deps := compilerDeps(t, tools, map[string]string{EnvDocGen: "godoc"})
	fs, out := runProbe(t, compilerProbe, deps)
	if out.Status != Present {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	c := fs.Compiler
	if c.Command != "go" || c.Version != "go version go1.24.1 linux/amd64" || c.VersionNumber != "1.24.1" {
		t.Fatalf("compiler = %+v", c)
	}
	if c.DocCommand == nil || *c.DocCommand != "godoc" || *c.DocVersion != "godoc v0.1" {
		t.Fatalf("doc generator = %v %v", c.DocCommand, c.DocVersion)
	}
}

func TestCompilerMissingIsFatal(t *testing.T) {
	deps := compilerDeps(t, fakeTools{}, nil)
	_, out := runProbe(t, compilerProbe, deps)
	if out.Status != Fatal || !errors.Is(out.Err, ErrCompilerNotFound) {
		t.Fatalf("expected fatal, got %+v", out)
	}

	deps = compilerDeps(t, fakeTools{"go": "FAIL"}, nil)
	_, out = runProbe(t, compilerProbe, deps)
	if out.Status != Fatal || !errors.Is(out.Err, ErrCompilerFailed) {
		t.Fatalf("expected fatal, got %+v", out)
	}
}

func TestDocGeneratorMissingIsAbsent(t *testing.T) {
	tools := fakeTools{"rustc": "rustc 1.75.0 (82e1608df 2023-12-21)", "rustdoc": "FAIL"}
	deps := compilerDeps(t, tools, map[string]string{EnvCompiler: "rustc", EnvDocGen: "rustdoc"})
	fs, out := runProbe(t, compilerProbe, deps)
	if out.Status != Present {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if fs.Compiler.DocCommand != nil || fs.Compiler.DocVersion != nil {
		t.Fatalf("doc generator should be absent")
	}
	if fs.Compiler.VersionNumber != "1.75.0" {
		t.Fatalf("version number = %q", fs.Compiler.VersionNumber)
	}
}

func TestParseVersionBanner(t *testing.T) {
	cases := map[string]string{
		"go version go1.22.3 linux/amd64":                    "1.22.3",
		"rustc 1.75.0 (82e1608df 2023-12-21)":                "1.75.0",
		"tinygo version 0.30.0 linux/amd64 (using go1.21.1)": "0.30.0",
		"gcc (GCC) 13.2.1 20231011":                          "13.2.1",
		"go version devel go1.25-abcdef Tue linux/amd64":     "1.25-abcdef",
	}
	for in, want := range cases {
		got, ok := ParseVersionBanner(in)
		if !ok || got != want {
			t.Fatalf("ParseVersionBanner(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseVersionBanner("no digits here 42"); ok {
		t.Fatalf("expected no version")
	}
}
