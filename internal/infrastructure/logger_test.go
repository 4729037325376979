package infrastructure

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortcli/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "test.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "both",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	file, err := os.Open(logFile)
	require.NoError(t, err)
	defer file.Close()

	scanner := bufio.NewScanner(file)
	require.True(t, scanner.Scan(), "log file should contain at least one line")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "log output must be JSON")
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestInitializeLoggerIsIdempotent(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	cfg := config.LoggingConfig{Level: "info", Output: "console"}

	first, err := InitializeLogger(cfg)
	require.NoError(t, err)

	second, err := InitializeLogger(cfg)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.input), "level %q", tt.input)
	}
}

func TestTraceIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = WithTraceID(ctx, "abc-123")
	assert.Equal(t, "abc-123", GetTraceID(ctx))

	ctx = EnsureTraceID(ctx)
	assert.Equal(t, "abc-123", GetTraceID(ctx), "existing trace ID must be preserved")

	generated := EnsureTraceID(context.Background())
	assert.NotEmpty(t, GetTraceID(generated))
}
