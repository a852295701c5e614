package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	kit "shamewizard/internal/platform/testkit"
)

func TestTimeLayout(t *testing.T) {
	ts := time.Date(2024, 6, 4, 9, 5, 3, 0, time.UTC)
	if got := ts.Format(TimeLayout); got != "6/4/2024 09:05:03" {
		t.Fatalf("layout = %q", got)
	}
}

func TestParseLevel_AllBranches(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"", "info"},
		{"   nonsense   ", "info"},
	}
	for _, c := range cases {
		lvl := parseLevel(c.in)
		if strings.ToLower(lvl.String()) != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, lvl, c.want)
		}
	}
}

// Init is process-wide, so this is the only test that calls it
func TestInit_Mirror_Named_C(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "bot.log")

	Init(Options{
		Level:     "info",
		Format:    "console",
		Service:   "shamewizard",
		Component: "root",
		File:      path,
		Writer:    &buf,
		StaticFields: map[string]string{
			"build": "test",
		},
	})
	t.Cleanup(func() { _ = Close() })

	Get().Info().Str("k", "v").Msg("root-msg")
	Named("intake").Info().Msg("named-msg")

	ctx := WithRequest(context.Background(), "req-123")
	ctx = WithJob(ctx, "job-1", "c1")
	C(ctx).Info().Msg("ctx-msg")
	C(context.Background()).Info().Msg("ctx-empty")

	Get().Debug().Msg("hidden-debug")
	SetLevel("debug")
	Get().Debug().Msg("visible-debug")

	out := buf.String()
	kit.MustContain(t, out, "root-msg")
	kit.MustContain(t, out, "named-msg")
	kit.MustContain(t, out, "intake")
	kit.MustContain(t, out, "req-123")
	kit.MustContain(t, out, "job-1")
	kit.MustContain(t, out, "comment_id=")
	kit.MustContain(t, out, "build=")
	kit.MustContain(t, out, "service=")
	kit.MustContain(t, out, "visible-debug")
	if strings.Contains(out, "hidden-debug") {
		t.Fatalf("debug line emitted at info level")
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("color codes written while mirroring to a file")
	}

	file, err := os.ReadFile(path)
	kit.NoErr(t, err)
	kit.MustContain(t, string(file), "root-msg")
	kit.MustContain(t, string(file), "ctx-msg")
}

func TestFromEnv_Independently(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "svc-b")
	t.Setenv("LOG_COMPONENT", "comp-b")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_FILE", "/tmp/x.log")

	opt := FromEnv()
	if opt.Level != "warn" {
		t.Fatalf("FromEnv Level = %q, want warn", opt.Level)
	}
	if opt.Format != "json" || opt.Service != "svc-b" || opt.Component != "comp-b" {
		t.Fatalf("FromEnv fields mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.File != "/tmp/x.log" {
		t.Fatalf("FromEnv caller/file mismatch: %+v", opt)
	}
}

func TestFromEnv_FileDefaultAndDisabled(t *testing.T) {
	if v, ok := os.LookupEnv("LOG_FILE"); ok {
		t.Cleanup(func() { _ = os.Setenv("LOG_FILE", v) })
	}
	_ = os.Unsetenv("LOG_FILE")
	if got := FromEnv().File; got != "" {
		t.Fatalf("FromEnv should not mirror by default, got %q", got)
	}
	if got := FromEnvFile("bot.log").File; got != "bot.log" {
		t.Fatalf("default File = %q, want bot.log", got)
	}

	t.Setenv("LOG_FILE", "")
	if got := FromEnvFile("bot.log").File; got != "" {
		t.Fatalf("empty LOG_FILE should disable mirror, got %q", got)
	}
}
