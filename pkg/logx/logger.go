// Package logx provides structured logging for the surf-lamp engine.
//
// It keeps the teacher's logx.Logger ergonomics (New(level), the
// Debug/Info/Warn/Error(msg, keysAndValues...) variadic call shape,
// WithField/WithFields for persistent context) but backs them with
// sirupsen/logrus instead of hand-rolled encoding/json + log.Logger — the
// teacher lists logrus in go.mod but never actually imports it anywhere.
package logx

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus.Entry, carrying persistent fields the way the
// teacher's WithField/WithFields chain did.
type Logger struct {
	entry *logrus.Entry
}

// New creates a structured logger at the given level ("debug", "info",
// "warn"/"warning", "error"; anything else falls back to info).
func New(levelStr string) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	base.SetLevel(parseLevel(levelStr))
	return &Logger{entry: logrus.NewEntry(base)}
}

// NewWithFields creates a logger with persistent contextual fields already
// attached.
func NewWithFields(levelStr string, fields map[string]interface{}) *Logger {
	l := New(levelStr)
	return l.WithFields(fields)
}

// WithFields returns a new logger with additional persistent fields merged
// in; the receiver is left unchanged.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithField returns a new logger with one additional persistent field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// SetLevel changes the logging level of the underlying logrus logger.
func (l *Logger) SetLevel(levelStr string) {
	l.entry.Logger.SetLevel(parseLevel(levelStr))
}

func parseLevel(levelStr string) logrus.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// withKVs folds a variadic key/value tail into a logrus field set.
func (l *Logger) withKVs(keysAndValues ...interface{}) *logrus.Entry {
	if len(keysAndValues) == 0 {
		return l.entry
	}
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}

// Debug logs a debug message with key/value pairs.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.withKVs(keysAndValues...).Debug(msg)
}

// Info logs an info message with key/value pairs.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.withKVs(keysAndValues...).Info(msg)
}

// Warn logs a warning message with key/value pairs.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.withKVs(keysAndValues...).Warn(msg)
}

// Error logs an error message with key/value pairs.
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.withKVs(keysAndValues...).Error(msg)
}
