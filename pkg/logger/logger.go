package logger

import (
	"log/slog"
	"os"
)

// Logger wraps slog with a fixed component field so every subsystem
// (hub, repositories, fanout) tags its own output.
type Logger struct {
	l *slog.Logger
}

func New(component string) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return &Logger{l: slog.New(handler).With("component", component)}
}

// NewWith builds a child logger from an existing slog.Logger.
func NewWith(l *slog.Logger, component string) *Logger {
	return &Logger{l: l.With("component", component)}
}

func (lg *Logger) Debug(msg string, args ...any) { lg.l.Debug(msg, args...) }
func (lg *Logger) Info(msg string, args ...any)  { lg.l.Info(msg, args...) }
func (lg *Logger) Warn(msg string, args ...any)  { lg.l.Warn(msg, args...) }
func (lg *Logger) Error(msg string, args ...any) { lg.l.Error(msg, args...) }
