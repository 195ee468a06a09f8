package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Options selects log level, format and destination.
type Options struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	Out    io.Writer
}

// Logger wraps a logrus entry so callers can attach fields once and pass it down.
type Logger struct {
	*logrus.Entry
}

// New builds a logger. Text output is the default; json is meant for CI runs.
func New(opt Options) *Logger {
	base := logrus.New()
	if strings.EqualFold(opt.Format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}
	if opt.Out != nil {
		base.SetOutput(opt.Out)
	} else {
		base.SetOutput(os.Stderr)
	}
	base.SetLevel(ParseLevel(opt.Level))
	return &Logger{Entry: logrus.NewEntry(base)}
}

// ParseLevel maps a config string to a logrus level, defaulting to info.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{Entry: logrus.NewEntry(base)}
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Discard()
	}
	return l
}

// Component tags entries with the emitting component.
func (l *Logger) Component(name string) *logrus.Entry {
	return l.WithField("component", name)
}

// WithError standardizes error logging.
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
