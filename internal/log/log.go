// ABOUTME: Level-gated diagnostic logger on slog levels with a swappable sink
// ABOUTME: Interactive mode points the sink at a file so log lines never tear the TUI

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level atomic.Int64

	outMu sync.Mutex
	out   io.Writer = os.Stderr
	file  *os.File
)

func init() {
	level.Store(int64(LevelInfo))
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Store(int64(l))
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return slog.Level(level.Load())
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a level.
// Unknown strings fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetOutput redirects log output. A nil writer discards everything.
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	if w == nil {
		w = io.Discard
	}
	out = w
}

// OpenFile appends log output to path, creating it with 0o600 if needed.
// The previous file sink, if any, is closed.
func OpenFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	outMu.Lock()
	prev := file
	file = f
	out = f
	outMu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Close releases the file sink opened by OpenFile and reverts to stderr.
func Close() error {
	outMu.Lock()
	defer outMu.Unlock()
	out = os.Stderr
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

func emit(l slog.Level, tag, format string, args []any) {
	if l < LevelError && slog.Level(level.Load()) > l {
		return
	}
	line := fmt.Sprintf("%s [%s] %s\n", time.Now().Format("15:04:05.000"), tag, fmt.Sprintf(format, args...))
	outMu.Lock()
	_, _ = io.WriteString(out, line)
	outMu.Unlock()
}

// Debug logs a debug message if the level allows it.
func Debug(format string, args ...any) {
	emit(LevelDebug, "DEBUG", format, args)
}

// Info logs an info message if the level allows it.
func Info(format string, args ...any) {
	emit(LevelInfo, "INFO", format, args)
}

// Warn logs a warning message if the level allows it.
func Warn(format string, args ...any) {
	emit(LevelWarn, "WARN", format, args)
}

// Error logs an error message (always emitted).
func Error(format string, args ...any) {
	emit(LevelError, "ERROR", format, args)
}
