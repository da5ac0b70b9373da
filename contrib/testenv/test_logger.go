package testenv

import (
	"fmt"
	"strings"
)

// TestLogger is a logger.Logger that prints a message index (starting
// from 0), level, and message content, without the timestamp.
// This allows example log output to be deterministic.
type TestLogger struct {
	index               int
	ignoreErrorPrefixes []string // prefixes of error messages to ignore
	ignoreDebug         bool     // whether to ignore debug messages
}

func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

// NewTestLoggerWithOptions creates a TestLogger with custom options
func NewTestLoggerWithOptions(opts ...TestLoggerOption) *TestLogger {
	l := &TestLogger{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TestLoggerOption is a function that configures a TestLogger
type TestLoggerOption func(*TestLogger)

// WithIgnoreErrorPrefixes sets prefixes for error messages that should be ignored
func WithIgnoreErrorPrefixes(prefixes ...string) TestLoggerOption {
	return func(l *TestLogger) {
		l.ignoreErrorPrefixes = append(l.ignoreErrorPrefixes, prefixes...)
	}
}

// WithIgnoreDebug configures the logger to ignore debug messages
func WithIgnoreDebug() TestLoggerOption {
	return func(l *TestLogger) {
		l.ignoreDebug = true
	}
}

func (l *TestLogger) Error(msg string, args ...any) {
	// Check if this is an error message that should be ignored
	for _, prefix := range l.ignoreErrorPrefixes {
		if strings.HasPrefix(msg, prefix) {
			return
		}
	}
	l.print("ERROR", msg, args)
}

func (l *TestLogger) Warn(msg string, args ...any) {
	l.print("WARN", msg, args)
}

func (l *TestLogger) Info(msg string, args ...any) {
	l.print("INFO", msg, args)
}

func (l *TestLogger) Debug(msg string, args ...any) {
	if l.ignoreDebug {
		return
	}
	l.print("DEBUG", msg, args)
}

func (l *TestLogger) print(level, msg string, args []any) {
	attrs := attrsToString(args)
	if attrs != "" {
		fmt.Printf("[%d] %s: %s %s\n", l.index, level, msg, attrs)
	} else {
		fmt.Printf("[%d] %s: %s\n", l.index, level, msg)
	}
	l.index++
}

func attrsToString(args []any) string {
	var sb strings.Builder
	for i := 0; i+1 < len(args); i += 2 {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v=%v", args[i], args[i+1])
	}
	// An odd trailing argument is rendered the way ZeroLogger renders it.
	if len(args)%2 != 0 {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "arg=%v", args[len(args)-1])
	}
	return sb.String()
}
