// Package logger writes structured logs to a per-run file. The terminal
// belongs to the TUI, so nothing is logged to stdout.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	logFile *os.File
)

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Init opens dir/cli-<timestamp>.log and installs a JSON logger writing only
// to it, also as the slog default. If the file cannot be created, logs go to
// stderr.
func Init(dir, level string) (*slog.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	closeLocked()
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		return logger, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("cli-%s.log", time.Now().Format("20060102-150405")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		return logger, fmt.Errorf("open log file: %w", err)
	}

	logFile = f
	logger = slog.New(slog.NewJSONHandler(f, opts)).With("app", "scrapectl")
	slog.SetDefault(logger)
	return logger, nil
}

// L returns the current logger. Before Init it discards everything.
func L() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Path returns the current log file, or "" when logging is not file backed.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return ""
	}
	return logFile.Name()
}

// Close closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
