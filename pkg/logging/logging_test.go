package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.With("component", "store").Info("saved graph", "points", 3, "path", "my file.json", "durationMs", 12)

	line := buf.String()
	for _, want := range []string{"[INFO]  ", "saved graph |", "component=store", "points=3", `path="my file.json"`, "duration=12ms"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
	if strings.Index(line, "component=") > strings.Index(line, "points=") {
		t.Errorf("Expected WithAttrs attributes before record attributes: %q", line)
	}
}

func TestCompactHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))

	l.Log(context.Background(), LevelTrace, "deep")
	if !strings.HasPrefix(buf.String(), "[TRACE] ") {
		t.Errorf("Expected trace prefix, got %q", buf.String())
	}

	buf.Reset()
	l = slog.New(NewCompactHandler(&buf, nil))
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected debug to be filtered at default level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelTrace)
	defer SetOutput(io.Discard)

	ctx := WithRequestID(context.Background(), "0123456789abcdef")
	LogContext(ctx, LevelTrace, "request", "route", "/api/points/{id}")

	line := buf.String()
	for _, want := range []string{"[TRACE] ", "request |", "req=01234567", "route=/api/points/{id}"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}

func TestCompactHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, nil))

	l.WithGroup("store").With("kind", "badger").Info("opened",
		slog.Group("options", "sync", true, "dir", ""),
		"durationMs", 3,
		"error", errors.New("disk full"))

	line := buf.String()
	for _, want := range []string{"store.kind=badger", "store.options.sync=true", `store.options.dir=""`,
		"store.duration=3ms", `store.error="disk full"`} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}

	buf.Reset()
	l.Info("plain")
	if got := buf.String(); !strings.HasSuffix(got, " plain\n") {
		t.Errorf("Expected no attribute separator without attributes, got %q", got)
	}
}
