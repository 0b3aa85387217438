package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/esbot/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.LogConfig{Level: "info", Format: "json"}, true))

	logger.Debug("hidden")
	logger.Info("Session finished", "shown", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Session finished", entry["msg"])
	assert.Equal(t, float64(3), entry["shown"])
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.LogConfig{Level: "warn", Format: "text"}, true))

	logger.Info("hidden")
	logger.Warn("Failed to persist mastery change", "word", "pan")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Failed to persist mastery change")
	assert.Contains(t, out, "word=pan")
}

func TestNewLogger_WritesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "esbot.log")
	logger, closer, err := NewLogger(config.LogConfig{Level: "info", Format: "json", File: path}, false)
	require.NoError(t, err)

	logger.Info("Profile loaded", "profile", "ana")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"profile":"ana"`)
	assert.Same(t, logger, slog.Default())
}
