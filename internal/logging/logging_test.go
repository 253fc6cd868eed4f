package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"": DefaultLevel, "debug": slog.LevelDebug, "INFO": slog.LevelInfo, " warn ": slog.LevelWarn, "error": slog.LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Fatalf("got %v %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Fatalf("got %v %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewRespectsLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo, FormatJSON)
	l.Debug("hidden")
	l.Info("shown", "probe", "git")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record leaked: %s", out)
	}
	if !strings.Contains(out, `"probe":"git"`) {
		t.Fatalf("expected json attrs, got %s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelDebug, FormatText)
	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Debug("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("logger not carried by context: %q", buf.String())
	}
	FromContext(context.Background()).Error("dropped")
}
