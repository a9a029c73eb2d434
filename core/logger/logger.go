package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration with environment variable support.
type Config struct {
	Level   string `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`
	Format  string `env:"LOG_FORMAT" envDefault:"json" yaml:"format"`
	Service string `env:"APP_NAME" envDefault:"certkeeper" yaml:"service"`
}

type options struct {
	level   slog.Level
	json    bool
	output  io.Writer
	attrs   []slog.Attr
	handler *slog.HandlerOptions
}

// Option configures logger construction.
type Option func(*options)

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithJSONFormatter switches output to JSON.
func WithJSONFormatter() Option {
	return func(o *options) {
		o.json = true
	}
}

// WithTextFormatter switches output to logfmt-style text.
func WithTextFormatter() Option {
	return func(o *options) {
		o.json = false
	}
}

// WithOutput sets the destination writer. Nil is ignored.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithAttr adds attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, attrs...)
	}
}

// WithHandlerOptions overrides the slog handler options. The level from WithLevel
// is applied when the given options do not set one.
func WithHandlerOptions(opts *slog.HandlerOptions) Option {
	return func(o *options) {
		o.handler = opts
	}
}

// WithDevelopment configures text output at debug level for local runs.
func WithDevelopment(service string) Option {
	return func(o *options) {
		o.level = slog.LevelDebug
		o.json = false
		o.attrs = append(o.attrs, slog.String("service", service))
	}
}

// WithProduction configures JSON output at info level.
func WithProduction(service string) Option {
	return func(o *options) {
		o.level = slog.LevelInfo
		o.json = true
		o.attrs = append(o.attrs, slog.String("service", service))
	}
}

// New creates a slog.Logger. Defaults to JSON at info level on stdout.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level:  slog.LevelInfo,
		json:   true,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	ho := o.handler
	if ho == nil {
		ho = &slog.HandlerOptions{}
	}
	if ho.Level == nil {
		ho.Level = o.level
	}

	var h slog.Handler
	if o.json {
		h = slog.NewJSONHandler(o.output, ho)
	} else {
		h = slog.NewTextHandler(o.output, ho)
	}
	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}

	return slog.New(h)
}

// NewFromConfig creates a logger from configuration.
// Additional options can override config values.
func NewFromConfig(cfg Config, opts ...Option) *slog.Logger {
	configOpts := []Option{WithLevel(ParseLevel(cfg.Level))}

	if strings.EqualFold(cfg.Format, "text") {
		configOpts = append(configOpts, WithTextFormatter())
	} else {
		configOpts = append(configOpts, WithJSONFormatter())
	}
	if cfg.Service != "" {
		configOpts = append(configOpts, WithAttr(slog.String("service", cfg.Service)))
	}

	return New(append(configOpts, opts...)...)
}

// ParseLevel maps a level name to slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
