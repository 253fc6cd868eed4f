package version

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/flarebyte/buildfacts/cmd/buildfacts/common"
	"github.com/flarebyte/buildfacts/internal/buildinfo"
)

func runVersion(t *testing.T, args ...string) string {
	t.Helper()
	var stdout bytes.Buffer
	rt := common.Runtime{Stdout: &stdout, Now: func() time.Time { return time.Unix(0, 0) }}
	cmd := NewCmd()
	cmd.SetArgs(append([]string{}, args...))
	if err := cmd.ExecuteContext(common.WithRuntime(context.Background(), rt)); err != nil {
		t.Fatalf("run: %v", err)
	}
	return stdout.String()
}

func TestVersionDefaultOutputStable(t *testing.T) {
	oldVersion, oldCommit, oldDate := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	defer func() {
		buildinfo.Version, buildinfo.Commit, buildinfo.Date = oldVersion, oldCommit, oldDate
	}()
	buildinfo.Version = "1.0.0"
	buildinfo.Commit = ""
	buildinfo.Date = ""

	if got := runVersion(t); got != "buildfacts 1.0.0\n" {
		t.Fatalf("unexpected output: %q", got)
	}
	if got := runVersion(t, "--short"); got != "1.0.0\n" {
		t.Fatalf("unexpected short output: %q", got)
	}
}

func TestVersionJSON(t *testing.T) {
	oldVersion := buildinfo.Version
	defer func() { buildinfo.Version = oldVersion }()
	buildinfo.Version = "1.0.0"

	var got map[string]any
	if err := json.Unmarshal([]byte(runVersion(t, "--json")), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["version"] != "1.0.0" || got["timestamp"] != "1970-01-01T00:00:00Z" {
		t.Fatalf("unexpected json: %v", got)
	}
}
