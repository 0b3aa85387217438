package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/example/esbot/internal/config"
)

// NewLogger creates a *slog.Logger based on the provided LogConfig
// and sets it as the default logger via slog.SetDefault.
//
// Format "text" uses the tint handler, "json" produces structured JSON output.
// Output goes to cfg.File ("-" for stderr) so it stays out of the interactive UI.
// The returned closer releases the log file.
func NewLogger(cfg config.LogConfig, noColor bool) (*slog.Logger, io.Closer, error) {
	out, closer, err := openLogOutput(cfg.File)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(newHandler(out, cfg, noColor || out != os.Stderr))
	slog.SetDefault(logger)
	return logger, closer, nil
}

func newHandler(w io.Writer, cfg config.LogConfig, noColor bool) slog.Handler {
	level := parseLevel(cfg.Level)

	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	})
}

func openLogOutput(path string) (io.Writer, io.Closer, error) {
	if path == "" || path == "-" {
		return os.Stderr, io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
