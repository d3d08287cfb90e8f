// Package logger wraps log/slog with a chainable component/file/function
// context. Error helpers log and hand back an error in one call so call sites
// can write `return log.Err("failed to ...", err)`.
package logger

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	logger   *slog.Logger
	name     string
	file     string
	function string
}

// Init installs the process-wide slog handler. Production gets JSON, everything
// else gets human readable text with debug enabled.
func Init(environment string) {
	var handler slog.Handler
	if strings.EqualFold(environment, "production") {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}

func New(name string) Logger {
	return Logger{logger: slog.Default(), name: name}
}

func (l Logger) File(name string) Logger {
	l.file = name
	return l
}

func (l Logger) Function(name string) Logger {
	l.function = name
	return l
}

func (l Logger) with(args []any) []any {
	attrs := make([]any, 0, len(args)+6)
	attrs = append(attrs, "component", l.name)
	if l.file != "" {
		attrs = append(attrs, "file", l.file)
	}
	if l.function != "" {
		attrs = append(attrs, "function", l.function)
	}
	return append(attrs, args...)
}

func (l Logger) base() *slog.Logger {
	if l.logger == nil {
		return slog.Default()
	}
	return l.logger
}

func (l Logger) Info(msg string, args ...any) {
	l.base().Info(msg, l.with(args)...)
}

func (l Logger) Debug(msg string, args ...any) {
	l.base().Debug(msg, l.with(args)...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.base().Warn(msg, l.with(args)...)
}

// Er logs err without returning it.
func (l Logger) Er(msg string, err error, args ...any) {
	l.base().Error(msg, l.with(append(args, "error", err))...)
}

func (l Logger) ErMsg(msg string, args ...any) {
	l.base().Error(msg, l.with(args)...)
}

// Err logs err and returns it wrapped with msg.
func (l Logger) Err(msg string, err error, args ...any) error {
	l.Er(msg, err, args...)
	if err == nil {
		return errors.New(msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Error logs msg and returns it as a new error.
func (l Logger) Error(msg string, args ...any) error {
	l.ErMsg(msg, args...)
	return errors.New(msg)
}

func (l Logger) ErrMsg(msg string) error {
	l.ErMsg(msg)
	return errors.New(msg)
}
