// Package logger provides leveled diagnostic logging to the secondary
// (error) output stream, gated by a verbosity level set once at startup.
package logger

import (
	"log"
	"os"

	"go.uber.org/atomic"
)

var (
	warnLogger  = log.New(os.Stderr, "WARN:  ", log.Ltime)
	infoLogger  = log.New(os.Stderr, "INFO:  ", log.Ltime)
	debugLogger = log.New(os.Stderr, "DEBUG: ", log.Ltime)
	errorLogger = log.New(os.Stderr, "ERROR: ", log.Ltime)
	fatalLogger = log.New(os.Stderr, "FATAL: ", log.Ltime)

	verbosity atomic.Int32
)

// SetVerbosity sets the process-wide verbosity level (clamped 0..3).
// 0: errors only. 1: +warnings. 2: +info. 3: +per-worker diagnostics.
func SetVerbosity(v int) {
	if v < 0 {
		v = 0
	}
	if v > 3 {
		v = 3
	}
	verbosity.Store(int32(v))
}

// Error logs an error message; always emitted regardless of verbosity.
func Error(format string, v ...interface{}) {
	errorLogger.Printf(format, v...)
}

// Fatal logs a fatal error message and exits with status 1.
func Fatal(format string, v ...interface{}) {
	fatalLogger.Printf(format, v...)
	os.Exit(1)
}

// Warn logs a warning message when verbosity >= 1.
func Warn(format string, v ...interface{}) {
	if verbosity.Load() >= 1 {
		warnLogger.Printf(format, v...)
	}
}

// Info logs an informational message when verbosity >= 2.
func Info(format string, v ...interface{}) {
	if verbosity.Load() >= 2 {
		infoLogger.Printf(format, v...)
	}
}

// Debug logs a per-worker diagnostic message when verbosity >= 3.
func Debug(format string, v ...interface{}) {
	if verbosity.Load() >= 3 {
		debugLogger.Printf(format, v...)
	}
}
