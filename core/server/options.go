package server

import (
	"crypto/tls"
	"io"
	"log/slog"
	"time"
)

type options struct {
	logger            *slog.Logger
	listen            ListenFunc
	tlsConfig         *tls.Config
	readHeaderTimeout time.Duration
	idleTimeout       time.Duration
}

func newOptions(cfg Config, opts []Option) *options {
	o := &options{
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		listen:            DefaultListen,
		readHeaderTimeout: DefaultReadHeaderTimeout,
		idleTimeout:       DefaultIdleTimeout,
	}
	if cfg.ReadHeaderTimeout > 0 {
		o.readHeaderTimeout = cfg.ReadHeaderTimeout
	}
	if cfg.IdleTimeout > 0 {
		o.idleTimeout = cfg.IdleTimeout
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures servers built by NewPair and BuildServer.
type Option func(*options)

// WithLogger sets a custom logger for server operations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithListenFunc replaces the function used to bind ports.
// Configured ports are still validated; only the binding itself changes.
func WithListenFunc(fn ListenFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.listen = fn
		}
	}
}

// WithTLSConfig sets the base TLS configuration. Loaded certificates are added
// to a clone; the given config is never modified.
func WithTLSConfig(config *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = config
	}
}

// WithReadHeaderTimeout overrides the request header read timeout.
func WithReadHeaderTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.readHeaderTimeout = timeout
		}
	}
}

// WithIdleTimeout overrides the keep-alive idle timeout.
func WithIdleTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.idleTimeout = timeout
		}
	}
}
