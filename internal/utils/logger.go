package utils

import (
	"io"
	"log"
	"os"
)

// Logger writes INFO and WARN lines to one stream and ERROR lines to another
type Logger struct {
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
	prefix   string
}

// NewLogger creates a logger writing to stdout and stderr
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr)
}

// NewLoggerTo creates a logger writing to the given streams
func NewLoggerTo(out, errOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.LUTC
	return &Logger{
		infoLog:  log.New(out, "INFO: ", flags),
		warnLog:  log.New(out, "WARN: ", flags),
		errorLog: log.New(errOut, "ERROR: ", flags),
	}
}

// WithRequest returns a logger that prefixes every line with the request id
func (l *Logger) WithRequest(requestID string) *Logger {
	if requestID == "" {
		return l
	}
	scoped := *l
	scoped.prefix = "[" + requestID + "] "
	return &scoped
}

// args puts the request prefix in front of the caller's arguments so the
// prefix is never interpreted as part of the format
func (l *Logger) args(v []interface{}) []interface{} {
	return append([]interface{}{l.prefix}, v...)
}

// Info logs an informational message
func (l *Logger) Info(format string, v ...interface{}) {
	l.infoLog.Printf("%s"+format, l.args(v)...)
}

// Warn logs a client error worth noticing
func (l *Logger) Warn(format string, v ...interface{}) {
	l.warnLog.Printf("%s"+format, l.args(v)...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.errorLog.Printf("%s"+format, l.args(v)...)
}
