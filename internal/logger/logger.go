// Package logger holds the process-wide structured logger used by galkit
// components to report misuse and allocation failures.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the global logger instance. It's initialized to discard all output by default.
// Call Init() to enable logging.
var L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	logPrefix = "galkit-"
	logSuffix = ".log"
)

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Writer  io.Writer  // Destination; overrides LogDir when set
	LogDir  string     // Directory for a dated log file when Writer is nil. Default: stderr
	Format  string     // "json" or "text" (default)
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled
}

// Init configures logging. Call from main() before any log calls.
// If opts.Enabled is false, all log output is discarded.
// The returned function closes a log file opened by Init and is never nil.
func Init(opts Options) (func(), error) {
	noop := func() {}
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return noop, nil
	}

	w := opts.Writer
	closer := noop
	if w == nil && opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
			return noop, err
		}
		filename := filepath.Join(opts.LogDir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return noop, err
		}
		w = f
		closer = func() { _ = f.Close() }
	}
	if w == nil {
		w = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}
	switch strings.ToLower(opts.Format) {
	case "json":
		L = slog.New(slog.NewJSONHandler(w, hopts))
	case "", "text":
		L = slog.New(slog.NewTextHandler(w, hopts))
	default:
		closer()
		return noop, fmt.Errorf("logger: unknown format %q", opts.Format)
	}
	return closer, nil
}

// ParseLevel maps a config string to a slog level. Unknown strings map to info.
func ParseLevel(s string) slog.Level {
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

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
