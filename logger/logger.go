package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/constants"
	log "github.com/sirupsen/logrus"
)

// Logger type is interface for available logging methods.
type Logger interface {
	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	Panic(...interface{})
	Fatal(...interface{})
}

// Options used to build a LoggerImpl.
// An empty LogFile disables the file output.
type Options struct {
	Service        string
	Level          string
	PrintStackDump bool
	LogFile        string
	Console        io.Writer
}

// LoggerImpl is a struct that extends sirupsen/logrus.
// Each instance owns its own *logrus.Logger so nothing is shared via package globals.
type LoggerImpl struct {
	Logger         *log.Entry
	Service        string
	LogLevelStr    string
	PrintStackDump bool
	base           *log.Logger
	file           *os.File
}

// NewLogger will create a new console logger implementation.
// An invalid level is reported on stderr and causes exit(1).
func NewLogger(serviceName string, level string, stackDumpOnPanic bool) *LoggerImpl {
	l, err := New(Options{Service: serviceName, Level: level, PrintStackDump: stackDumpOnPanic})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error setting up logging: ", err)
		os.Exit(1)
	}
	return l
}

// New creates a logger writing text lines to the console and, if opts.LogFile is set,
// appending the same lines to that file without colours.
func New(opts Options) (*LoggerImpl, error) {
	logLevel, err := log.ParseLevel(opts.Level)
	if err != nil {
		return nil, errors.Wrap(err, "error setting up logging")
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	base := log.New()
	base.SetOutput(console)
	base.SetLevel(logLevel)
	base.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: constants.TimeFormatLog,
		ForceColors:     isTerminal(console),
		DisableColors:   !isTerminal(console),
	})
	impl := &LoggerImpl{
		Service:        opts.Service,
		LogLevelStr:    opts.Level,
		PrintStackDump: opts.PrintStackDump,
		base:           base,
	}
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to open log file %q", opts.LogFile)
		}
		impl.file = f
		base.AddHook(newWriterHook(f, &log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: constants.TimeFormatLog,
			DisableColors:   true,
		}))
	}
	impl.Logger = base.WithField("service", opts.Service)
	return impl, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WithField returns a copy of l that adds key=value to every line.
// The copy shares the underlying outputs with l.
func (l *LoggerImpl) WithField(key string, value interface{}) *LoggerImpl {
	c := *l
	c.Logger = l.Logger.WithField(key, value)
	return &c
}

// Trace log.
func (l *LoggerImpl) Trace(message ...interface{}) {
	l.Logger.Trace(message...)
}

// Debug log.
func (l *LoggerImpl) Debug(message ...interface{}) {
	l.Logger.Debug(message...)
}

// Info log.
func (l *LoggerImpl) Info(message ...interface{}) {
	l.Logger.Info(message...)
}

// Warn log.
func (l *LoggerImpl) Warn(message ...interface{}) {
	l.Logger.Warn(message...)
}

// Error (with stack trace in trace mode, or if the user explicitly sets PrintStackDump).
func (l *LoggerImpl) Error(message ...interface{}) {
	if l.LogLevelStr == "trace" || l.PrintStackDump {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Error(message...)
	} else {
		l.Logger.Error(message...)
	}
}

// Panic (with stack trace in debug mode, or if user explicitly sets PrintStackDump).
func (l *LoggerImpl) Panic(message ...interface{}) {
	if l.PrintStackDump || l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Panic(message...)
	} else {
		l.Logger.Panic(message...)
	}
}

// Fatal (with stack trace in debug mode).
// This causes exit(1) without a stack dump by default.
func (l *LoggerImpl) Fatal(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Fatal(message...)
	} else {
		l.Logger.Fatal(message...)
	}
}

// SetOutput will set the console output to the Writer supplied.
func (l *LoggerImpl) SetOutput(writer io.Writer) {
	l.base.SetOutput(writer)
}

// SetFormatter replaces the console formatter.
func (l *LoggerImpl) SetFormatter(f log.Formatter) {
	l.base.SetFormatter(f)
}

// Close releases the log file, if any.
func (l *LoggerImpl) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
