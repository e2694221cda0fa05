// Package logger provides the structured, context-aware logging used by the
// kalpha CLI and service. Every entry carries the file:line that emitted it.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// callerDepth skips caller, emit and the exported level method.
const callerDepth = 3

// Logger is the logging surface the rest of the module depends on.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	// Named scopes subsequent fields under name.
	Named(name string) Logger
}

// Field is one structured key/value.
type Field struct {
	Key   string
	Value any
}

func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }

type slogLogger struct {
	h *slog.Logger
}

func (l *slogLogger) Named(name string) Logger { return &slogLogger{h: l.h.WithGroup(name)} }

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, slog.LevelError, msg, fields)
}

func (l *slogLogger) emit(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if !l.h.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+1)
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	attrs = append(attrs, slog.String("source", caller()))
	l.h.LogAttrs(ctx, level, msg, attrs...)
}

var (
	global   Logger
	levelVar slog.LevelVar
)

// InitWithOptions installs the global logger at info level. Text on stdout
// unless WithFormat or WithWriter say otherwise; the CLI points it at stderr
// so results on stdout stay machine-readable.
func InitWithOptions(opts ...Option) error {
	o := newOptions(opts)

	levelVar.Set(slog.LevelInfo)
	ho := &slog.HandlerOptions{Level: &levelVar}

	var h slog.Handler
	switch o.format {
	case FormatJSON:
		h = slog.NewJSONHandler(o.writer, ho)
	case FormatText:
		h = slog.NewTextHandler(o.writer, ho)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, o.format)
	}
	global = &slogLogger{h: slog.New(h)}
	return nil
}

// Discard returns a Logger that drops every entry.
func Discard() Logger {
	return &slogLogger{h: slog.New(slog.DiscardHandler)}
}

var workDir = sync.OnceValue(func() string {
	wd, _ := os.Getwd()
	return wd
})

// caller reports the emitting call site relative to the working directory,
// falling back to the bare file name.
func caller() string {
	_, file, line, ok := runtime.Caller(callerDepth)
	if !ok {
		return "unknown:0"
	}
	if wd := workDir(); wd != "" {
		if rel, err := filepath.Rel(wd, file); err == nil {
			return fmt.Sprintf("%s:%d", rel, line)
		}
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// Get returns the global logger. It panics before InitWithOptions.
func Get() Logger {
	if global == nil {
		panic("logger not initialized: call logger.InitWithOptions first")
	}
	return global
}

// Named is shorthand for Get().Named(name).
func Named(name string) Logger {
	return Get().Named(name)
}

// SetLevel changes the global threshold.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString accepts debug, info, warn or warning, and error, in any case.
// Empty means info.
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
