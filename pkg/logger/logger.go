package logger

import (
	"log"
	"os"
)

// Logger writes printf-style messages at three levels. Errors go to stderr.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
}

func New() *Logger {
	flags := log.Ldate | log.Ltime | log.LUTC | log.Lmsgprefix
	return &Logger{
		info:  log.New(os.Stdout, "INFO  ", flags),
		warn:  log.New(os.Stdout, "WARN  ", flags),
		error: log.New(os.Stderr, "ERROR ", flags),
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.info.Printf(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.warn.Printf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.error.Printf(format, args...)
}
