// Package logging is a small leveled wrapper over the standard logger.
package logging

import (
	"io"
	"log"
	"strings"
)

// Level represents different logging verbosity levels
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps ERROR, WARN, INFO or DEBUG (any case) to a level.
// Anything else is INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger provides leveled logging with a bracketed component prefix
type Logger struct {
	level     Level
	component string
	out       *log.Logger
}

// New creates a logger writing through out; a nil out uses the standard logger
func New(level Level, out *log.Logger) *Logger {
	if out == nil {
		out = log.Default()
	}
	return &Logger{level: level, out: out}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(LevelError, log.New(io.Discard, "", 0))
}

// With returns a copy tagging every line with [component]
func (l *Logger) With(component string) *Logger {
	c := *l
	c.component = component
	return &c
}

func (l *Logger) printf(level Level, tag, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	prefix := "[" + tag + "] "
	if l.component != "" {
		prefix = "[" + l.component + "] " + prefix
	}
	l.out.Printf(prefix+format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LevelError, "ERROR", format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf(LevelWarn, "WARN", format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LevelInfo, "INFO", format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LevelDebug, "DEBUG", format, args...)
}

// Level returns the current log level
func (l *Logger) Level() Level {
	return l.level
}
