package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestLoggerWritesComponentAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "Updater")

	l.Debug("hidden %d", 1)
	l.Info("updated %d symbols", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "component=Updater")
	assert.Contains(t, out, `msg="updated 3 symbols"`)
}

func TestNamedSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf, "debug", "root")
	root.Named("Storage").Warning("slow query")

	assert.Contains(t, buf.String(), "component=Storage")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestCriticalExits(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "main")
	code := -1
	l.exit = func(c int) { code = c }

	l.Critical("cannot open %s", "db")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "critical=true")
}
