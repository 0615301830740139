// Package logger provides a small component-scoped wrapper around log/slog.
//
// Every package in this module obtains its own Logger via New with a component name, either a
// plain package name or "package:unit" (e.g. "controller", "store:sqlite",
// "interaction:terminal"). The component name is attached to every record as a "component" attribute so
// log lines can be filtered without string-matching messages.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

var (
	baseOnce    sync.Once
	baseHandler slog.Handler
)

// level controls the minimum level emitted by every Logger created via New.
// It is a slog.LevelVar shared by the lazily constructed handler, so a change
// made through SetVerbose takes effect at any time, including for Loggers
// created earlier.
var level = new(slog.LevelVar)

func init() {
	level.Set(slog.LevelInfo)
}

// SetVerbose raises the shared log level to Debug, or restores Info when false.
func SetVerbose(verbose bool) {
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

func handler() slog.Handler {
	baseOnce.Do(func() {
		baseHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	})
	return baseHandler
}

// Logger is a component-scoped logging facade. The zero value is not usable;
// construct one with New.
type Logger struct {
	name string
	slog *slog.Logger
}

// New returns a Logger tagged with the given dotted component name, e.g. "store:sqlite".
func New(component string) *Logger {
	return &Logger{
		name: component,
		slog: slog.New(handler()).With("component", component),
	}
}

// Print logs msg at info level.
func (l *Logger) Print(msg string) {
	l.slog.Info(msg)
}

// Printf formats and logs at info level.
func (l *Logger) Printf(format string, args ...any) {
	l.slog.Info(fmt.Sprintf(format, args...))
}

// Debug logs msg at debug level; only emitted when SetVerbose(true) was called.
func (l *Logger) Debug(msg string) {
	l.slog.Debug(msg)
}

// Debugf formats and logs at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.slog.Debug(fmt.Sprintf(format, args...))
}

// Warn logs msg at warning level.
func (l *Logger) Warn(msg string) {
	l.slog.Warn(msg)
}

// Warnf formats and logs at warning level.
func (l *Logger) Warnf(format string, args ...any) {
	l.slog.Warn(fmt.Sprintf(format, args...))
}

// Error logs err (and an optional message) at error level.
func (l *Logger) Error(msg string, err error) {
	if err != nil {
		l.slog.Error(msg, "error", err)
		return
	}
	l.slog.Error(msg)
}

// Errorf formats and logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.slog.Error(fmt.Sprintf(format, args...))
}

// Enabled reports whether debug-level logging is currently active for this logger.
func (l *Logger) Enabled() bool {
	return l.slog.Enabled(context.Background(), slog.LevelDebug)
}

// Name returns the component name this logger was constructed with.
func (l *Logger) Name() string {
	return l.name
}

// With returns a derived Logger that attaches the given key/value pairs to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{name: l.name, slog: l.slog.With(args...)}
}
