package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "unknown", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		got := parseLogLevel(tc.in)
		if got != tc.want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewLogger("warn", LogFormatJSON, &buf)
	log.Info("dropped")
	log.Warn("auth.login.fail", "reason", "invalid_credentials")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "auth.login.fail" || rec["reason"] != "invalid_credentials" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNewLogger_Pretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewLogger("info", "PRETTY", &buf)
	log.Info("server.start", "addr", "0.0.0.0:8080")

	if bytes.ContainsRune(buf.Bytes(), '{') {
		t.Fatalf("pretty output looks like JSON: %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("msg=server.start")) {
		t.Fatalf("missing message: %q", buf.String())
	}
}
