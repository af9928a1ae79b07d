// Package logger_test contains tests for the logger package
package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/taskr-api/internal/config"
	"github.com/phrazzld/taskr-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "log line should be valid JSON: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		name        string
		level       string
		wantDebug   bool
		wantInfo    bool
		wantWarning bool
	}{
		{name: "debug level", level: "debug", wantDebug: true, wantInfo: true, wantWarning: true},
		{name: "info level", level: "info", wantDebug: false, wantInfo: true, wantWarning: true},
		{name: "error level", level: "ERROR", wantDebug: false, wantInfo: false, wantWarning: false},
		{name: "invalid level defaults to info", level: "chatty", wantDebug: false, wantInfo: true, wantWarning: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tt.level}, &buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			l.Info("info message", "user_id", "abc")
			l.Warn("warn message")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug message"))
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "info message"))
			assert.Equal(t, tt.wantWarning, strings.Contains(out, "warn message"))
		})
	}
}

func TestSetupSetsDefault(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	_, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "info"}, &buf)
	require.NoError(t, err)

	slog.Info("via default", "key", "value")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "via default", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "value", entries[0]["key"])
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	custom := slog.New(slog.NewJSONHandler(&buf, nil)).With("trace_id", "abc123")

	t.Run("returns stored logger", func(t *testing.T) {
		ctx := logger.WithLogger(context.Background(), custom)
		assert.Same(t, custom, logger.FromContext(ctx))
	})

	t.Run("falls back to default", func(t *testing.T) {
		assert.NotNil(t, logger.FromContext(context.Background()))
	})

	t.Run("falls back to provided logger", func(t *testing.T) {
		fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck // exercising nil handling
		assert.NotNil(t, logger.FromContext(nil))
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	level, ok := logger.ParseLevel(" Warn ")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, level)

	level, ok = logger.ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}
