package root

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flarebyte/buildfacts/cmd/buildfacts/common"
	"github.com/flarebyte/buildfacts/internal/probe"
	"github.com/flarebyte/buildfacts/internal/testutil"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, dir string, env map[string]string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	tools := testutil.GoTools()
	rt := common.Runtime{
		Stdout:   &stdout,
		Stderr:   &stderr,
		Env:      probe.MapEnv(env),
		Exec:     tools.Exec,
		LookPath: tools.LookPath,
		Now:      func() time.Time { return time.Unix(1700000000, 0) },
		Getwd:    func() (string, error) { return dir, nil },
	}
	err := ExecuteWith(context.Background(), rt, args)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func assertCode(t *testing.T, r result, want int) {
	t.Helper()
	if got := common.Code(r.err); got != want {
		t.Fatalf("exit code = %d, want %d (err: %v)", got, want, r.err)
	}
}

func TestGenerateWritesFile(t *testing.T) {
	dir := t.TempDir()
	env := testutil.Env("GOPACKAGE", "buildinfo")
	r := execute(t, dir, env, "generate", "-o", "facts_gen.go")
	assertCode(t, r, 0)
	b, err := os.ReadFile(filepath.Join(dir, "facts_gen.go"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	src := string(b)
	for _, s := range []string{"package buildinfo", `const PkgName = "demo"`, "const BuiltTimeUnix int64 = 1700000000"} {
		if !strings.Contains(src, s) {
			t.Errorf("missing %q in:\n%s", s, src)
		}
	}
	if r.stdout != "" {
		t.Fatalf("generate should print nothing on stdout, got %q", r.stdout)
	}
}

func TestGeneratePackageFlagWins(t *testing.T) {
	dir := t.TempDir()
	r := execute(t, dir, testutil.Env("GOPACKAGE", "buildinfo"), "generate", "--package", "facts", "--dir", dir, "-v")
	assertCode(t, r, 0)
	b, err := os.ReadFile(filepath.Join(dir, "buildfacts_gen.go"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(b), "package facts\n") {
		t.Fatalf("package flag ignored:\n%s", b)
	}
	if !strings.Contains(r.stderr, "git: absent") {
		t.Fatalf("verbose output should list absent probes: %q", r.stderr)
	}
}

func TestGenerateCollectionFailure(t *testing.T) {
	dir := t.TempDir()
	r := execute(t, dir, map[string]string{}, "generate")
	assertCode(t, r, common.ExitCollect)
	if !strings.Contains(r.err.Error(), "environment: ") {
		t.Fatalf("error should name the probe: %v", r.err)
	}
	if _, err := os.Stat(filepath.Join(dir, "buildfacts_gen.go")); !os.IsNotExist(err) {
		t.Fatalf("nothing must be written on failure")
	}
	if !strings.Contains(r.stderr, "probe failed") {
		t.Fatalf("failure should be logged at the default level: %q", r.stderr)
	}
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()
	env := testutil.Env()
	cases := [][]string{
		{"generate", "--enable", "custm"},
		{"generate", "--no-such-flag"},
		{"generate", "extra"},
		{"--log-level", "loud", "generate"},
		{"--profile", "nope", "version"},
		{"generate", "--config", filepath.Join(dir, "missing.cue")},
		{"show", "--format", "toml"},
	}
	for _, args := range cases {
		r := execute(t, dir, env, args...)
		assertCode(t, r, common.ExitUsage)
	}
	r := execute(t, dir, env, "generate", "--enable", "custm")
	if !strings.Contains(r.err.Error(), "did you mean custom?") {
		t.Fatalf("missing suggestion: %v", r.err)
	}
}

func TestShowJSON(t *testing.T) {
	dir := t.TempDir()
	env := testutil.Env("GITLAB_CI", "true")
	r := execute(t, dir, env, "show", "--format", "json", "--disable", "time,compiler")
	assertCode(t, r, 0)
	var got map[string]any
	if err := json.Unmarshal([]byte(r.stdout), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, r.stdout)
	}
	if got["ci"] != "GitLab" {
		t.Fatalf("ci = %v", got["ci"])
	}
	if _, ok := got["builtAt"]; ok {
		t.Fatalf("disabled time capability still shown")
	}
}

func TestShowPrintsPartialFactsOnFailure(t *testing.T) {
	dir := t.TempDir()
	r := execute(t, dir, map[string]string{}, "show")
	assertCode(t, r, common.ExitCollect)
	if !strings.Contains(r.stdout, "capabilities:") {
		t.Fatalf("partial facts not printed: %q", r.stdout)
	}
}

func TestCICommand(t *testing.T) {
	dir := t.TempDir()
	r := execute(t, dir, map[string]string{"TRAVIS": "true"}, "ci")
	assertCode(t, r, 0)
	if r.stdout != "Travis CI\n" {
		t.Fatalf("unexpected output: %q", r.stdout)
	}
	r = execute(t, dir, map[string]string{}, "ci")
	if r.stdout != "none\n" {
		t.Fatalf("unexpected output: %q", r.stdout)
	}
	r = execute(t, dir, map[string]string{}, "ci", "-q")
	assertCode(t, r, common.ExitCollect)
}
