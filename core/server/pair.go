package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dmitrymomot/certkeeper/core/logger"
	"github.com/dmitrymomot/certkeeper/pkg/async"
)

// Pair owns one redirect server and one TLS server and starts and stops them
// as a unit. A Pair is used for a single start/stop lifecycle; build a fresh
// one for every restart.
type Pair struct {
	mu      sync.Mutex
	http    *RedirectServer
	https   *TLSServer
	logger  *slog.Logger
	running bool
}

// NewPair validates cfg and builds both servers. Nothing is bound until Start.
// Every validation failure matches ErrConfiguration.
func NewPair(cfg Config, handler http.Handler, opts ...Option) (*Pair, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, errors.Join(ErrConfiguration, ErrMissingHandler)
	}

	httpEP, httpsEP, err := cfg.endpoints()
	if err != nil {
		return nil, err
	}

	p := &Pair{logger: newOptions(cfg, opts).logger}

	for _, ep := range []Endpoint{httpEP, httpsEP} {
		srv, err := BuildServer(ep, cfg, handler, opts...)
		if err != nil {
			return nil, err
		}
		switch s := srv.(type) {
		case *RedirectServer:
			p.http = s
		case *TLSServer:
			p.https = s
		}
	}

	return p, nil
}

// Start binds both servers concurrently and waits for both outcomes. If either
// fails, the other is stopped before the joined error is returned, so no
// half-started pair is left behind.
func (p *Pair) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrPairAlreadyRunning
	}

	err := async.ExecAll(
		async.Exec(ctx, Server(p.https), startServer),
		async.Exec(ctx, Server(p.http), startServer),
	)
	if err != nil {
		// Roll back whichever side came up; stopping an unstarted server is a no-op.
		if stopErr := p.stopBoth(ctx); stopErr != nil {
			p.logger.ErrorContext(ctx, "rollback after failed start", logger.Error(stopErr))
		}
		return err
	}

	p.running = true
	p.logger.InfoContext(ctx, "server pair started",
		slog.String("http_addr", p.http.Addr()),
		slog.String("https_addr", p.https.Addr()))
	return nil
}

// Stop drains both servers concurrently and waits for both. Forcibly closed
// connections are expected and not reported as errors.
func (p *Pair) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}

	err := p.stopBoth(ctx)
	p.running = false

	if err != nil {
		p.logger.ErrorContext(ctx, "server pair stop error", logger.Error(err))
		return err
	}

	p.logger.InfoContext(ctx, "server pair stopped")
	return nil
}

// Running reports whether Start has succeeded and Stop has not been called.
func (p *Pair) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// HTTPAddr returns the redirect server's address.
func (p *Pair) HTTPAddr() string {
	return p.http.Addr()
}

// HTTPSAddr returns the TLS server's address.
func (p *Pair) HTTPSAddr() string {
	return p.https.Addr()
}

// Certificate returns details of the certificate currently served.
func (p *Pair) Certificate() *CertificateInfo {
	return p.https.Certificate()
}

// stopBoth runs regardless of ctx cancellation; ports must be released even on shutdown.
func (p *Pair) stopBoth(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	return async.ExecAll(
		async.Exec(ctx, Server(p.https), stopServer),
		async.Exec(ctx, Server(p.http), stopServer),
	)
}

func startServer(ctx context.Context, s Server) error {
	return s.Start(ctx)
}

func stopServer(ctx context.Context, s Server) error {
	return s.Stop(ctx)
}
