package renewal

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Option is a functional option for configuring a Supervisor.
type Option func(*options)

type options struct {
	logger           *slog.Logger
	interval         time.Duration
	renewImmediately bool
	resumeOnFailure  bool
	commandTimeout   time.Duration
	exit             func(code int)
}

func defaultOptions() *options {
	return &options{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		interval: DefaultInterval,
		exit:     os.Exit,
	}
}

// WithLogger configures structured logging for supervisor operations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInterval sets the time between renewal cycles. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithRenewImmediately makes the first cycle fire after ImmediateDelay instead of a full interval.
func WithRenewImmediately(enabled bool) Option {
	return func(o *options) {
		o.renewImmediately = enabled
	}
}

// WithResumeOnFailure keeps scheduling cycles after a failed renewal command.
// By default the supervisor halts automatic renewal and keeps serving.
func WithResumeOnFailure(enabled bool) Option {
	return func(o *options) {
		o.resumeOnFailure = enabled
	}
}

// WithCommandTimeout bounds each renewal command run. Zero disables the limit.
func WithCommandTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.commandTimeout = d
		}
	}
}

// WithExitFunc replaces os.Exit for the restart failure path.
func WithExitFunc(fn func(code int)) Option {
	return func(o *options) {
		if fn != nil {
			o.exit = fn
		}
	}
}
