package renewal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/certkeeper/core/logger"
)

// ServerPair is the unit the supervisor releases and rebuilds on every cycle.
type ServerPair interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PairFactory builds a fresh, unstarted pair. It is called once at startup
// and once per cycle, so every restart reads certificates from disk again.
type PairFactory func() (ServerPair, error)

// Supervisor keeps a server pair running and periodically releases its ports,
// runs the renewal command, and starts a fresh pair.
//
// All pair ownership happens on the goroutine running Run, so cycles never
// overlap: the next timer is armed only after the restart step resolved.
type Supervisor struct {
	factory PairFactory
	runner  Runner
	opts    *options
	logger  *slog.Logger

	pair    ServerPair
	state   atomic.Int32
	running atomic.Bool

	errMu   sync.Mutex
	lastErr error
}

// New creates a supervisor. Nothing is started until Run.
func New(factory PairFactory, runner Runner, opts ...Option) (*Supervisor, error) {
	if factory == nil {
		return nil, ErrNilPairFactory
	}
	if runner == nil {
		return nil, ErrNilRunner
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Supervisor{
		factory: factory,
		runner:  runner,
		opts:    o,
		logger:  o.logger.With(logger.Component("renewal")),
	}, nil
}

// NewFromConfig creates a supervisor that runs cfg.Command as the renewal step.
// Additional options override config values.
func NewFromConfig(cfg Config, factory PairFactory, opts ...Option) (*Supervisor, error) {
	runner, err := NewCommandRunner(cfg.Command)
	if err != nil {
		return nil, err
	}

	allOpts := append([]Option{
		WithInterval(cfg.Interval),
		WithRenewImmediately(cfg.RenewImmediately),
		WithCommandTimeout(cfg.CommandTimeout),
		WithResumeOnFailure(cfg.ResumeOnFailure),
	}, opts...)

	return New(factory, runner, allOpts...)
}

// State returns the current lifecycle state. Safe for concurrent use.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// Err returns the error of the last failed cycle, or nil if the last cycle
// succeeded. Once halted it matches ErrRenewalHalted.
func (s *Supervisor) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr
}

// Run starts the initial pair and then renews on schedule until ctx is
// cancelled, at which point the pair is stopped and Run returns nil.
//
// A failed initial start is returned wrapped in ErrStartup. A failed restart
// after a cycle calls the exit function with code 1 and returns ErrFatalRestart.
func (s *Supervisor) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	s.setState(ctx, s.logger, StateRestarting)
	pair, err := s.startPair(ctx)
	if err != nil {
		s.setState(ctx, s.logger, StateFatal)
		s.logger.ErrorContext(ctx, "initial server start failed", logger.Error(err))
		return errors.Join(ErrStartup, err)
	}
	s.pair = pair
	s.setState(ctx, s.logger, StateIdle)

	delay := s.opts.interval
	if s.opts.renewImmediately {
		delay = ImmediateDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	s.logger.InfoContext(ctx, "renewal scheduled",
		logger.Interval(s.opts.interval),
		logger.Time("next_run", time.Now().Add(delay)))

	for {
		select {
		case <-ctx.Done():
			s.shutdown(ctx)
			return nil
		case <-timer.C:
		}

		rearm, err := s.renew(ctx)
		if err != nil {
			return err
		}
		if rearm {
			timer.Reset(s.opts.interval)
			s.logger.InfoContext(ctx, "next renewal scheduled",
				logger.Time("next_run", time.Now().Add(s.opts.interval)))
		}
	}
}

// renew runs one cycle. The cycle is never interrupted by ctx cancellation;
// shutdown is handled once it finished. It reports whether the timer should
// be re-armed.
func (s *Supervisor) renew(ctx context.Context) (bool, error) {
	ctx = context.WithoutCancel(ctx)
	log := s.logger.With(logger.CycleID(uuid.NewString()))
	start := time.Now()

	log.InfoContext(ctx, "renewal cycle started")

	s.setState(ctx, log, StateReleasing)
	releaseErr := s.release(ctx)

	var cmdErr error
	if releaseErr != nil {
		log.ErrorContext(ctx, "failed to release ports; skipping renewal command", logger.Error(releaseErr))
	} else {
		s.setState(ctx, log, StateRenewing)
		cmdErr = s.runCommand(ctx, log)
	}

	s.setState(ctx, log, StateRestarting)
	pair, err := s.startPair(ctx)
	if err != nil {
		s.setState(ctx, log, StateFatal)
		s.setErr(errors.Join(ErrFatalRestart, err))
		log.ErrorContext(ctx, "restart failed after renewal; terminating",
			logger.Error(err),
			logger.Errors(releaseErr, cmdErr),
			logger.Elapsed(start))
		s.opts.exit(1)
		return false, errors.Join(ErrFatalRestart, err)
	}
	s.pair = pair

	cycleErr := errors.Join(releaseErr, cmdErr)
	if cycleErr == nil {
		s.setErr(nil)
		s.setState(ctx, log, StateIdle)
		log.InfoContext(ctx, "renewal cycle completed", logger.Elapsed(start))
		return true, nil
	}

	log.ErrorContext(ctx, "renewal failed; servers restarted", logger.Error(cycleErr), logger.Elapsed(start))

	if s.opts.resumeOnFailure {
		s.setErr(cycleErr)
		s.setState(ctx, log, StateIdle)
		log.WarnContext(ctx, "renewal will be retried at the next interval", logger.Interval(s.opts.interval))
		return true, nil
	}

	s.setErr(errors.Join(ErrRenewalHalted, cycleErr))
	s.setState(ctx, log, StateHalted)
	log.ErrorContext(ctx, "renewal halted; automatic renewal will not be scheduled again", logger.Error(cycleErr))
	return false, nil
}

func (s *Supervisor) release(ctx context.Context) error {
	if s.pair == nil {
		return nil
	}
	pair := s.pair
	s.pair = nil
	return pair.Stop(ctx)
}

func (s *Supervisor) startPair(ctx context.Context) (ServerPair, error) {
	pair, err := s.factory()
	if err != nil {
		return nil, err
	}
	if err := pair.Start(ctx); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *Supervisor) runCommand(ctx context.Context, log *slog.Logger) error {
	if s.opts.commandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.commandTimeout)
		defer cancel()
	}

	log.InfoContext(ctx, "running renewal command")
	out, err := s.runner.Run(ctx)

	logOutput(ctx, log, "stdout", out.Stdout)
	logOutput(ctx, log, "stderr", out.Stderr)

	if err != nil {
		log.ErrorContext(ctx, "renewal command failed",
			logger.ExitCode(out.ExitCode),
			logger.Duration(out.Duration),
			logger.Error(err))
		return err
	}

	log.InfoContext(ctx, "renewal command succeeded",
		logger.ExitCode(out.ExitCode),
		logger.Duration(out.Duration))
	return nil
}

// logOutput logs every non-empty line of a captured stream.
func logOutput(ctx context.Context, log *slog.Logger, stream string, data []byte) {
	for line := range bytes.Lines(data) {
		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		log.InfoContext(ctx, string(line), logger.Stream(stream))
	}
}

func (s *Supervisor) shutdown(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := s.release(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to stop servers on shutdown", logger.Error(err))
	}
	s.logger.InfoContext(ctx, "supervisor stopped", logger.State(s.State().String()))
}

func (s *Supervisor) setState(ctx context.Context, log *slog.Logger, st State) {
	s.state.Store(int32(st))
	log.DebugContext(ctx, "state changed", logger.State(st.String()))
}

func (s *Supervisor) setErr(err error) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}
