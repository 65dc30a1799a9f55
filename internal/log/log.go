// Package log provides a small leveled logger.
package log

import (
	"io"
	"log"
	"strings"
)

// Level controls which messages are written.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// LevelFromString parses a level name. Unknown names map to LevelInfo.
func LevelFromString(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "NONE", "OFF":
		return LevelNone
	default:
		return LevelInfo
	}
}

// Logger writes leveled lines to an io.Writer. A nil *Logger discards everything.
type Logger struct {
	logger *log.Logger
	level  Level
}

// New returns a logger writing to out with timestamps.
func New(out io.Writer, level Level) *Logger {
	return &Logger{
		logger: log.New(out, "", log.LstdFlags|log.Lmicroseconds),
		level:  level,
	}
}

// Discard returns a logger that drops all output.
func Discard() *Logger {
	return New(io.Discard, LevelNone)
}

func (l *Logger) Debugf(format string, v ...any) {
	l.printf(LevelDebug, format, v...)
}

func (l *Logger) Infof(format string, v ...any) {
	l.printf(LevelInfo, format, v...)
}

func (l *Logger) Warnf(format string, v ...any) {
	l.printf(LevelWarn, format, v...)
}

func (l *Logger) Errorf(format string, v ...any) {
	l.printf(LevelError, format, v...)
}

func (l *Logger) printf(level Level, format string, v ...any) {
	if l == nil || l.level > level || level == LevelNone {
		return
	}
	l.logger.Printf(level.String()+": "+format, v...)
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// Level returns the minimum level.
func (l *Logger) Level() Level {
	return l.level
}
