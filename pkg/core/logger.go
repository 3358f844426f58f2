package core

import (
	"log"
	"os"
)

// DefaultLogger implements Logger by wrapping the standard library's
// log.Logger, the same "write straight to the terminal" shape as the
// teacher's renderer.DefaultLogger, but built on log.Logger rather than
// bare fmt.Printf so callers get a timestamp prefix for free;
// NewDefaultLogger points it at stderr rather than stdout.
type DefaultLogger struct {
	l *log.Logger
}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	dl.l.Printf(format, args...)
}

// NewDefaultLogger returns a Logger writing to stderr, the package's
// grounded default wherever a caller does not supply its own.
func NewDefaultLogger() Logger {
	return &DefaultLogger{l: log.New(os.Stderr, "", log.LstdFlags)}
}

// DiscardLogger implements Logger by dropping every call, mirroring the
// teacher's progressive_integration_test.go testLogger used to silence
// output in tests.
type DiscardLogger struct{}

func (DiscardLogger) Printf(string, ...interface{}) {}
