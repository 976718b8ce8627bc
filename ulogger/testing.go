package ulogger

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// TestingT is the part of *testing.T the testing loggers write to.
type TestingT interface {
	Errorf(format string, args ...interface{})
	FailNow()
	Logf(format string, args ...any)
}

// VerboseTestLogger sends every line to t.Logf prefixed with its level. Fatalf
// fails the test.
type VerboseTestLogger struct {
	t  TestingT
	mu sync.Mutex
}

func NewVerboseTestLogger(t TestingT) *VerboseTestLogger {
	return &VerboseTestLogger{t: t}
}

func (l *VerboseTestLogger) write(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.t.Logf("["+level+"] "+format, args...)
}

func (l *VerboseTestLogger) Debugf(format string, args ...interface{}) {
	l.write("DEBUG", format, args...)
}

func (l *VerboseTestLogger) Infof(format string, args ...interface{}) {
	l.write("INFO", format, args...)
}

func (l *VerboseTestLogger) Warnf(format string, args ...interface{}) {
	l.write("WARN", format, args...)
}

func (l *VerboseTestLogger) Errorf(format string, args ...interface{}) {
	l.write("ERROR", format, args...)
}

func (l *VerboseTestLogger) Fatalf(format string, args ...interface{}) {
	l.write("FATAL", format, args...)
	l.t.FailNow()
}

func (l *VerboseTestLogger) LogLevel() int { return 0 }
func (l *VerboseTestLogger) SetLogLevel(string) {}
func (l *VerboseTestLogger) New(string, ...Option) Logger { return l }
func (l *VerboseTestLogger) Duplicate(...Option) Logger { return l }

// ErrorTestLogger drops everything below error level and counts the rest, so a
// test can assert that a failure path was logged. Lines are written to t with
// the caller's location until Shutdown.
type ErrorTestLogger struct {
	t       TestingT
	count   atomic.Int64
	stopped atomic.Bool
}

func NewErrorTestLogger(t TestingT) *ErrorTestLogger {
	return &ErrorTestLogger{t: t}
}

// Shutdown stops writes to t, for loggers that outlive their test.
func (l *ErrorTestLogger) Shutdown() {
	l.stopped.Store(true)
}

// ErrorCount returns the number of Errorf and Fatalf calls so far.
func (l *ErrorTestLogger) ErrorCount() int64 {
	return l.count.Load()
}

func (l *ErrorTestLogger) Errorf(format string, args ...interface{}) {
	l.record("ERR_LEVEL", format, args...)
}

func (l *ErrorTestLogger) Fatalf(format string, args ...interface{}) {
	l.record("FATAL_LEVEL", format, args...)
}

func (l *ErrorTestLogger) record(level, format string, args ...interface{}) {
	l.count.Add(1)

	if l.stopped.Load() {
		return
	}

	if h, ok := l.t.(interface{ Helper() }); ok {
		h.Helper()
	}

	// skip record and Errorf/Fatalf
	_, file, line, _ := runtime.Caller(2)

	l.t.Logf(fmt.Sprintf("%s:%d: %s %s", file, line, level, format), args...)
}

func (l *ErrorTestLogger) Debugf(string, ...interface{}) {}
func (l *ErrorTestLogger) Infof(string, ...interface{}) {}
func (l *ErrorTestLogger) Warnf(string, ...interface{}) {}
func (l *ErrorTestLogger) LogLevel() int { return 0 }
func (l *ErrorTestLogger) SetLogLevel(string) {}
func (l *ErrorTestLogger) New(string, ...Option) Logger { return l }
func (l *ErrorTestLogger) Duplicate(...Option) Logger { return l }
