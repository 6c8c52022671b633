package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// handleRecord runs one record through the handler and returns the output.
func handleRecord(t *testing.T, h slog.Handler, level slog.Level, msg string, attrs ...slog.Attr) string {
	t.Helper()
	buf, ok := handlerBuffer(h)
	if !ok {
		t.Fatal("handler writer is not a *bytes.Buffer")
	}
	buf.Reset()

	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.AddAttrs(attrs...)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	return buf.String()
}

func handlerBuffer(h slog.Handler) (*bytes.Buffer, bool) {
	th, ok := h.(*TerminalHandler)
	if !ok {
		return nil, false
	}
	buf, ok := th.writer.(*bytes.Buffer)
	return buf, ok
}

func debugHandler() *TerminalHandler {
	return newTerminalHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})
}

func TestTerminalHandler_Format(t *testing.T) {
	h := debugHandler()

	ts := time.Date(2026, 1, 15, 10, 30, 45, 123000000, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "server started", 0)
	r.AddAttrs(slog.String("port", "8080"))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	output := h.writer.(*bytes.Buffer).String()
	for _, want := range []string{"10:30:45.123", "INF", "server started", "port=", "8080"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}

	// The handler must also work through the slog front end.
	h.writer.(*bytes.Buffer).Reset()
	slog.New(h).Info("test")
	if h.writer.(*bytes.Buffer).Len() == 0 {
		t.Error("expected output from logger")
	}
}

func TestTerminalHandler_Levels(t *testing.T) {
	tests := []struct {
		level slog.Level
		label string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			output := handleRecord(t, debugHandler(), tt.level, "msg")
			if !strings.Contains(output, tt.label) {
				t.Errorf("expected %s in output, got: %s", tt.label, output)
			}
		})
	}
}

func TestTerminalHandler_ColourCodes(t *testing.T) {
	output := handleRecord(t, debugHandler(), slog.LevelError, "fail")

	if !strings.Contains(output, ansiRed) {
		t.Error("expected red colour for ERROR level")
	}
	if !strings.Contains(output, ansiReset) {
		t.Error("expected reset code")
	}
	if !strings.Contains(output, ansiBold) {
		t.Error("expected bold for message")
	}
}

func TestTerminalHandler_Enabled(t *testing.T) {
	h := newTerminalHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	tests := []struct {
		level   slog.Level
		enabled bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.enabled {
			t.Errorf("Enabled(%v) = %v, want %v at WARN threshold", tt.level, got, tt.enabled)
		}
	}
}

func TestTerminalHandler_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
}

func TestTerminalHandler_WithAttrs(t *testing.T) {
	h := debugHandler().WithAttrs([]slog.Attr{slog.String("component", "api")})

	output := handleRecord(t, h, slog.LevelInfo, "request", slog.Int("status", 200))
	for _, want := range []string{"component=", "api", "status="} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestTerminalHandler_WithGroup(t *testing.T) {
	h := debugHandler().WithGroup("http")

	output := handleRecord(t, h, slog.LevelInfo, "request", slog.String("method", "GET"))
	if !strings.Contains(output, "http.method=") {
		t.Errorf("expected grouped attr http.method, got: %s", output)
	}
}

func TestTerminalHandler_QuotesStringsWithSpaces(t *testing.T) {
	output := handleRecord(t, debugHandler(), slog.LevelInfo, "msg",
		slog.String("error", "connection refused"))

	if !strings.Contains(output, `"connection refused"`) {
		t.Errorf("expected quoted string value, got: %s", output)
	}
}

func TestTerminalHandler_DefaultLevel(t *testing.T) {
	h := newTerminalHandler(&bytes.Buffer{}, nil)

	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("default level should be INFO")
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("DEBUG should be disabled at default INFO level")
	}
}

func TestTerminalHandler_EmptyGroup(t *testing.T) {
	h := debugHandler()
	if h.WithGroup("") != slog.Handler(h) {
		t.Error("WithGroup with empty string should return same handler")
	}
}

func TestTerminalHandler_GroupAttr(t *testing.T) {
	output := handleRecord(t, debugHandler(), slog.LevelInfo, "msg",
		slog.Group("request",
			slog.String("method", "POST"),
			slog.Int("status", 201),
		))

	if !strings.Contains(output, "request.method=") {
		t.Errorf("expected grouped request.method, got: %s", output)
	}
	if !strings.Contains(output, "request.status=") {
		t.Errorf("expected grouped request.status, got: %s", output)
	}
}
