// Package logging adds verbosity levels and a component tag on top of the standard logger.
package logging

import (
	"log"
	"os"
	"strings"
)

// Level is a logging verbosity threshold.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps ERROR, WARN, INFO or DEBUG (any case) to a Level.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "INFO":
		return LevelInfo, true
	case "DEBUG":
		return LevelDebug, true
	}
	return LevelInfo, false
}

// Logger writes "[Component] LEVEL message" lines through the standard logger.
type Logger struct {
	component string
	level     Level
}

// New creates a logger for component at the level named by LOG_LEVEL, INFO when unset.
func New(component string) *Logger {
	level, _ := ParseLevel(os.Getenv("LOG_LEVEL"))
	return &Logger{component: component, level: level}
}

// WithLevel returns a copy of l at level.
func (l *Logger) WithLevel(level Level) *Logger {
	return &Logger{component: l.component, level: level}
}

func (l *Logger) Errorf(format string, args ...interface{}) { l.printf(LevelError, "ERROR", format, args) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.printf(LevelWarn, "WARN", format, args) }
func (l *Logger) Infof(format string, args ...interface{})  { l.printf(LevelInfo, "INFO", format, args) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.printf(LevelDebug, "DEBUG", format, args) }

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && l.level >= level
}

func (l *Logger) printf(level Level, tag, format string, args []interface{}) {
	if !l.Enabled(level) {
		return
	}
	log.Printf("["+l.component+"] "+tag+" "+format, args...)
}
