package ulogger

import (
	"github.com/ordishs/gocore"
)

// GoCoreLogger adapts the gocore logger to the Logger interface.
type GoCoreLogger struct {
	logger    *gocore.Logger
	service   string
	skipFrame int
}

func NewGoCoreLogger(service string, options ...Option) *GoCoreLogger {
	if service == "" {
		service = "ledgersim"
	}

	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	return &GoCoreLogger{
		logger:    gocore.Log(service, gocore.NewLogLevelFromString(opts.logLevel)),
		service:   service,
		skipFrame: opts.skip,
	}
}

func (g *GoCoreLogger) New(service string, options ...Option) Logger {
	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	return &GoCoreLogger{
		logger:    gocore.Log(service, g.logger.GetLogLevel()),
		service:   service,
		skipFrame: opts.skip,
	}
}

func (g *GoCoreLogger) Duplicate(options ...Option) Logger {
	newLogger := &GoCoreLogger{g.logger, g.service, g.skipFrame}

	defaultOpts := DefaultOptions()
	opts := DefaultOptions()

	for _, o := range options {
		o(opts)
	}

	if opts.logLevel != defaultOpts.logLevel {
		newLogger.logger = gocore.Log(g.service, gocore.NewLogLevelFromString(opts.logLevel))
	}

	if opts.skip != defaultOpts.skip {
		newLogger.skipFrame = opts.skip
	}

	return newLogger
}

func (g *GoCoreLogger) LogLevel() int {
	return int(g.logger.GetLogLevel())
}

func (g *GoCoreLogger) SetLogLevel(_ string) {
	// noop, has to be set when creating
}

func (g *GoCoreLogger) Debugf(format string, args ...interface{}) {
	g.logger.Debugf(format, args...)
}

func (g *GoCoreLogger) Infof(format string, args ...interface{}) {
	g.logger.Infof(format, args...)
}

func (g *GoCoreLogger) Warnf(format string, args ...interface{}) {
	g.logger.Warnf(format, args...)
}

func (g *GoCoreLogger) Errorf(format string, args ...interface{}) {
	g.logger.Errorf(format, args...)
}

func (g *GoCoreLogger) Fatalf(format string, args ...interface{}) {
	g.logger.Fatalf(format, args...)
}
