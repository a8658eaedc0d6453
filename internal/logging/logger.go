package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
)

// Logger wraps logr.Logger with the handful of helpers the server uses.
type Logger struct {
	log logr.Logger
}

// New returns a Logger based on base, falling back to DefaultLogger when base
// has no sink.
func New(base logr.Logger) Logger {
	if base.GetSink() == nil {
		base = DefaultLogger()
	}
	return Logger{log: base}
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return Logger{log: logr.Discard()}
}

// DefaultLogger returns a development zap logger writing to stderr at info level.
func DefaultLogger() logr.Logger {
	log, err := build("info")
	if err != nil {
		return zapr.NewLogger(zap.NewNop())
	}
	return log
}

// NewWithLevel builds a zap-backed Logger for the given level name
// (debug, info, warn, error). Output always goes to stderr so the stdio
// transport keeps stdout for protocol frames.
func NewWithLevel(level string) (Logger, error) {
	log, err := build(level)
	if err != nil {
		return Logger{}, err
	}
	return Logger{log: log}, nil
}

func build(level string) (logr.Logger, error) {
	if level == "" {
		level = "info"
	}
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return logr.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomic
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	zapLogger, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, fmt.Errorf("build zap logger: %w", err)
	}
	return zapr.NewLogger(zapLogger), nil
}

// WithValues returns a Logger that adds keysAndValues to every entry.
func (l Logger) WithValues(keysAndValues ...any) Logger {
	return Logger{log: l.log.WithValues(keysAndValues...)}
}

// WithName appends name to the logger's name segments.
func (l Logger) WithName(name string) Logger {
	return Logger{log: l.log.WithName(name)}
}

// Info logs at V(0).
func (l Logger) Info(msg string, keysAndValues ...any) {
	l.log.Info(msg, keysAndValues...)
}

// Debug logs only when V(1) is enabled on the underlying sink.
func (l Logger) Debug(msg string, keysAndValues ...any) {
	if l.log.V(1).Enabled() {
		l.log.V(1).Info(msg, keysAndValues...)
	}
}

// Error logs err with msg regardless of verbosity.
func (l Logger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(err, msg, keysAndValues...)
}

// Logr exposes the underlying logr.Logger.
func (l Logger) Logr() logr.Logger {
	return l.log
}
