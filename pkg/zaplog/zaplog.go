// Package zaplog adapts wizard log events to a *zap.Logger.
package zaplog

import (
	wizard "github.com/goliatone/go-wizard"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger implements wizard.Logger on top of zap.
type Logger struct {
	log *zap.Logger
}

var _ wizard.Logger = (*Logger)(nil)

// New wraps log. A nil logger yields a no-op logger.
func New(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log.Named("wizard")}
}

// Log writes event at its level with structured fields.
func (l *Logger) Log(event wizard.LogEvent) {
	ce := l.log.Check(level(event.Level), message(event))
	if ce == nil {
		return
	}
	fields := make([]zap.Field, 0, 6)
	if event.Operation != "" {
		fields = append(fields, zap.String("operation", event.Operation))
	}
	if event.Section != "" {
		fields = append(fields, zap.String("section", event.Section))
	}
	if event.Field != "" {
		fields = append(fields, zap.String("field", event.Field))
	}
	if event.Duration > 0 {
		fields = append(fields, zap.Duration("duration", event.Duration))
	}
	if event.Count > 0 {
		fields = append(fields, zap.Int("count", event.Count))
	}
	if event.Err != nil {
		fields = append(fields, zap.Error(event.Err))
	}
	ce.Write(fields...)
}

func level(l wizard.LogLevel) zapcore.Level {
	switch l {
	case wizard.LogLevelDebug:
		return zapcore.DebugLevel
	case wizard.LogLevelWarn:
		return zapcore.WarnLevel
	case wizard.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func message(event wizard.LogEvent) string {
	if event.Message != "" {
		return event.Message
	}
	return event.Operation
}
