// Package logging provides implementations of the ports.Logger interface:
// a NopLogger for disabled logging and a zerolog-backed ConsoleLogger.
package logging

import (
	"context"

	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// NopLogger discards all messages.
type NopLogger struct {
	level ports.Level
}

// NewNopLogger creates a new no-op logger.
func NewNopLogger() *NopLogger {
	return &NopLogger{level: ports.LevelInfo}
}

func (l *NopLogger) Debug(_ context.Context, _ string, _ ...ports.Field) {}

func (l *NopLogger) Info(_ context.Context, _ string, _ ...ports.Field) {}

func (l *NopLogger) Warn(_ context.Context, _ string, _ ...ports.Field) {}

func (l *NopLogger) Error(_ context.Context, _ string, _ ...ports.Field) {}

// With returns the receiver; there are no fields to keep.
func (l *NopLogger) With(_ ...ports.Field) ports.Logger {
	return l
}

func (l *NopLogger) Level() ports.Level {
	return l.level
}

func (l *NopLogger) SetLevel(level ports.Level) {
	l.level = level
}

var _ ports.Logger = (*NopLogger)(nil)
