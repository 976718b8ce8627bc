package ulogger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ordishs/gocore"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const callerWidth = 32

var zerologLevels = map[string]zerolog.Level{
	"DEBUG": zerolog.DebugLevel,
	"INFO":  zerolog.InfoLevel,
	"WARN":  zerolog.WarnLevel,
	"ERROR": zerolog.ErrorLevel,
	"FATAL": zerolog.FatalLevel,
	"PANIC": zerolog.PanicLevel,
}

// gocoreLevels keeps LogLevel comparable across both logger types.
var gocoreLevels = map[zerolog.Level]int{
	zerolog.DebugLevel: int(gocore.DEBUG),
	zerolog.InfoLevel:  int(gocore.INFO),
	zerolog.WarnLevel:  int(gocore.WARN),
	zerolog.ErrorLevel: int(gocore.ERROR),
	zerolog.FatalLevel: int(gocore.FATAL),
}

var levelColors = map[string]int{
	"debug": colorBlue,
	"info":  colorGreen,
	"warn":  colorYellow,
	"error": colorRed,
	"fatal": colorRed,
	"panic": colorRed,
}

// ZeroLogger writes through zerolog, as JSON lines or, when pretty, as aligned
// console columns that are colored only on a terminal.
type ZeroLogger struct {
	zerolog.Logger
	service string
	w       io.Writer
	pretty  bool
}

func NewZeroLogger(service string, options ...Option) *ZeroLogger {
	if service == "" {
		service = "ledgersim"
	}

	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	ctx := zerolog.New(opts.writer).With()
	if opts.pretty {
		ctx = zerolog.New(consoleWriter(opts.writer, service)).With()
	} else {
		ctx = ctx.Str("service", service)
	}

	z := &ZeroLogger{
		Logger:  ctx.Timestamp().CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1 + opts.skip).Logger(),
		service: service,
		w:       opts.writer,
		pretty:  opts.pretty,
	}

	z.SetLogLevel(opts.logLevel)

	return z
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func consoleWriter(w io.Writer, service string) zerolog.ConsoleWriter {
	plain := !isTerminal(w)

	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    plain,
		TimeFormat: time.TimeOnly,
		FormatLevel: func(i interface{}) string {
			name, _ := i.(string)

			color, ok := levelColors[name]
			if !ok {
				color = colorWhite
			}

			return "| " + colorize(strings.ToUpper(fmt.Sprintf("%-6s", name)), color, plain) + "|"
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("| %-6s| %v", service, i)
		},
		FormatCaller: func(i interface{}) string {
			c, _ := i.(string)
			if c == "" {
				return c
			}

			return colorize(fmt.Sprintf("%-*s", callerWidth, shortCaller(c, callerWidth)), colorBold, plain)
		},
	}
}

// shortCaller keeps as many trailing path elements of file as fit in width,
// always at least the file name.
func shortCaller(file string, width int) string {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, file); err == nil {
			file = rel
		}
	}

	parts := strings.Split(filepath.ToSlash(file), "/")
	short := parts[len(parts)-1]

	for i := len(parts) - 2; i >= 0 && len(short)+len(parts[i])+1 <= width; i-- {
		short = parts[i] + "/" + short
	}

	return short
}

func colorize(s string, color int, disabled bool) string {
	if disabled {
		return s
	}

	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, s)
}

// New returns a logger for another service with this logger's writer, format
// and level unless options override them.
func (z *ZeroLogger) New(service string, options ...Option) Logger {
	inherited := []Option{
		WithWriter(z.w),
		WithPretty(z.pretty),
		WithLevel(strings.ToUpper(z.GetLevel().String())),
	}

	return NewZeroLogger(service, append(inherited, options...)...)
}

func (z *ZeroLogger) Duplicate(options ...Option) Logger {
	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	dup := *z

	if opts.logLevel != DefaultOptions().logLevel {
		dup.SetLogLevel(opts.logLevel)
	}

	if opts.skip != 0 {
		dup.Logger = dup.With().CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1 + opts.skip).Logger()
	}

	return &dup
}

// SetLogLevel falls back to INFO for unknown names.
func (z *ZeroLogger) SetLogLevel(logLevel string) {
	level, ok := zerologLevels[strings.ToUpper(logLevel)]
	if !ok {
		level = zerolog.InfoLevel
	}

	z.Logger = z.Level(level)
}

func (z *ZeroLogger) LogLevel() int {
	if level, ok := gocoreLevels[z.GetLevel()]; ok {
		return level
	}

	return int(gocore.INFO)
}

func (z *ZeroLogger) Debugf(format string, args ...interface{}) {
	z.Debug().Msgf(format, args...)
}

func (z *ZeroLogger) Infof(format string, args ...interface{}) {
	z.Info().Msgf(format, args...)
}

func (z *ZeroLogger) Warnf(format string, args ...interface{}) {
	z.Warn().Msgf(format, args...)
}

func (z *ZeroLogger) Errorf(format string, args ...interface{}) {
	z.Error().Msgf(format, args...)
}

func (z *ZeroLogger) Fatalf(format string, args ...interface{}) {
	z.Fatal().Msgf(format, args...)
}
