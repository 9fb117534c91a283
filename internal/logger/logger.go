// Package logger provides a small structured key-value logger used across
// every component. It intentionally has no external sinks: the observability
// boundary for this system is the structured log line itself (spec §7).
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Level is the severity of a log line.
type Level string

const (
	Debug Level = "DEBUG"
	Info  Level = "INFO"
	Warn  Level = "WARN"
	Error Level = "ERROR"
)

// Logger is the centralized logger for the ingestion/consensus core.
type Logger struct {
	service     string
	enableDebug bool
	out         *log.Logger
}

// New creates a logger tagged with the given service name. Debug lines are
// emitted only when LOG_LEVEL=DEBUG is set in the environment.
func New(service string) *Logger {
	return &Logger{
		service:     service,
		enableDebug: os.Getenv("LOG_LEVEL") == "DEBUG",
		out:         log.New(os.Stdout, "", 0),
	}
}

// With returns a child logger scoped to a sub-service name, e.g.
// base.With("scheduler") -> "[service.scheduler]".
func (l *Logger) With(sub string) *Logger {
	return &Logger{
		service:     l.service + "." + sub,
		enableDebug: l.enableDebug,
		out:         l.out,
	}
}

func (l *Logger) Debugf(msg string, keyvals ...interface{}) {
	if !l.enableDebug {
		return
	}
	l.log(Debug, msg, keyvals...)
}

func (l *Logger) Infof(msg string, keyvals ...interface{}) {
	l.log(Info, msg, keyvals...)
}

func (l *Logger) Warnf(msg string, keyvals ...interface{}) {
	l.log(Warn, msg, keyvals...)
}

// Errorf logs an error message. err may be nil.
func (l *Logger) Errorf(msg string, err error, keyvals ...interface{}) {
	if err != nil {
		keyvals = append(keyvals, "error", err.Error())
	}
	l.log(Error, msg, keyvals...)
}

func (l *Logger) log(level Level, msg string, keyvals ...interface{}) {
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	line := fmt.Sprintf("[%s][%s][%s] %s", ts, l.service, level, msg)
	if len(keyvals) > 0 {
		line = line + " " + formatKeyVals(keyvals...)
	}
	l.out.Println(line)
}

func formatKeyVals(keyvals ...interface{}) string {
	parts := make([]string, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		parts = append(parts, fmt.Sprintf("%v=%v", keyvals[i], keyvals[i+1]))
	}
	if len(keyvals)%2 == 1 {
		parts = append(parts, fmt.Sprintf("%v", keyvals[len(keyvals)-1]))
	}
	return strings.Join(parts, " ")
}
