package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init installs the process logger. Production defaults to JSON at info,
// everything else to text at debug; level and format override when set.
func Init(env string, opts ...Option) {
	o := options{out: os.Stdout}
	if env == "production" {
		o.level, o.format = slog.LevelInfo, "json"
	} else {
		o.level, o.format = slog.LevelDebug, "text"
	}
	for _, opt := range opts {
		opt(&o)
	}

	var handler slog.Handler
	if o.format == "json" {
		handler = slog.NewJSONHandler(o.out, &slog.HandlerOptions{Level: o.level})
	} else {
		handler = slog.NewTextHandler(o.out, &slog.HandlerOptions{Level: o.level})
	}

	defaultLogger = slog.New(handler).With("service", "dayflow")
	slog.SetDefault(defaultLogger)
}

type options struct {
	level  slog.Level
	format string
	out    io.Writer
}

type Option func(*options)

// WithLevel accepts debug, info, warn or error. Unknown values are ignored.
func WithLevel(level string) Option {
	return func(o *options) {
		switch strings.ToLower(level) {
		case "debug":
			o.level = slog.LevelDebug
		case "info":
			o.level = slog.LevelInfo
		case "warn":
			o.level = slog.LevelWarn
		case "error":
			o.level = slog.LevelError
		}
	}
}

func WithFormat(format string) Option {
	return func(o *options) {
		if format == "json" || format == "text" {
			o.format = format
		}
	}
}

func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}

// Discard is a logger for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
