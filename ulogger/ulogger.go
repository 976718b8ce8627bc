// Package ulogger is the logging facade used by every ledgersim component.
//
// Two backends sit behind Logger: zerolog, the default, and gocore. Tests use
// TestLogger to discard output, or the testing loggers to route it through t.
package ulogger

import (
	"github.com/bsv-blockchain/ledgersim/settings"
)

// ANSI SGR codes used by the pretty console writer.
const (
	colorBold   = 1
	colorRed    = 31
	colorGreen  = 32
	colorYellow = 33
	colorBlue   = 34
	colorWhite  = 37
)

type Logger interface {
	LogLevel() int
	SetLogLevel(level string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	New(service string, options ...Option) Logger
	Duplicate(options ...Option) Logger
}

// New picks the backend named by WithLoggerType, zerolog unless it is "gocore".
func New(service string, options ...Option) Logger {
	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	if opts.loggerType == "gocore" {
		return NewGoCoreLogger(service, options...)
	}

	return NewZeroLogger(service, options...)
}

// InitLogger creates the process logger from the logging settings.
func InitLogger(service string, tSettings *settings.Settings) Logger {
	return New(service,
		WithLevel(tSettings.Logging.Level),
		WithLoggerType(tSettings.Logging.Type),
		WithPretty(tSettings.Logging.Pretty),
	)
}
