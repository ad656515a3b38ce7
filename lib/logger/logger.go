// Package logger provides logging utilities for the application
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// --------------------------------------------------------------------------
// Log Levels
// --------------------------------------------------------------------------

// LogLevel controls which messages a logger emits.
type LogLevel int

const (
	CRITICAL LogLevel = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

// ParseLevel converts a string level to a LogLevel.
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warning", "warn":
		return WARNING, nil
	case "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Custom Logger
// --------------------------------------------------------------------------

// ILogger is the leveled logging interface used throughout the engine.
type ILogger interface {
	SetLevel(level LogLevel)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// taskLogger implements the ILogger interface with custom formatting
type taskLogger struct {
	name   string
	level  LogLevel
	logger *log.Logger
}

func (l *taskLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *taskLogger) Debugf(format string, args ...interface{}) {
	if l.level >= DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *taskLogger) Infof(format string, args ...interface{}) {
	if l.level >= INFO {
		l.log("INFO", format, args...)
	}
}

func (l *taskLogger) Warningf(format string, args ...interface{}) {
	if l.level >= WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *taskLogger) Errorf(format string, args ...interface{}) {
	if l.level >= ERROR {
		l.log("ERROR", format, args...)
	}
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *taskLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Registry
// --------------------------------------------------------------------------

var (
	mu           sync.Mutex
	loggers      = map[string]*taskLogger{}
	defaultLevel = INFO
)

// GetLogger returns the named logger, creating it on first use.
func GetLogger(pkgName string) ILogger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[pkgName]; ok {
		return l
	}
	l := &taskLogger{
		name:   pkgName,
		level:  defaultLevel,
		logger: log.New(os.Stdout, "", log.Ldate|log.Ltime),
	}
	loggers[pkgName] = l
	return l
}

// SetLevelAll sets the level on every logger created so far and the
// default for loggers created later.
func SetLevelAll(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	defaultLevel = level
	for _, l := range loggers {
		l.level = level
	}
}
