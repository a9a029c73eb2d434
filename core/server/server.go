package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/dmitrymomot/certkeeper/core/logger"
)

// Server is one side of a Pair: a listener bound to a single endpoint.
type Server interface {
	// Start binds the endpoint and begins serving. It returns once the socket is listening.
	Start(ctx context.Context) error
	// Stop closes the socket and cuts every open connection.
	Stop(ctx context.Context) error
	// Addr returns the bound address while running, otherwise the configured one.
	Addr() string
	// Protocol reports which variant this server implements.
	Protocol() Protocol
}

// BuildServer is the single dispatch point from a validated endpoint to its server.
func BuildServer(ep Endpoint, cfg Config, handler http.Handler, opts ...Option) (Server, error) {
	if err := ep.Validate(); err != nil {
		return nil, err
	}

	switch ep.Protocol {
	case ProtocolHTTP:
		return NewRedirectServer(ep, cfg, opts...), nil
	case ProtocolHTTPS:
		if handler == nil {
			return nil, errors.Join(ErrConfiguration, ErrMissingHandler)
		}
		if cfg.CertPath() == "" {
			return nil, errors.Join(ErrConfiguration, ErrMissingCertDir)
		}
		return NewTLSServer(ep, cfg, handler, opts...), nil
	default:
		return nil, errors.Join(ErrConfiguration, fmt.Errorf("%w: %s", ErrUnknownProtocol, ep.Protocol))
	}
}

// listenerServer serves an http.Server on a DrainableListener.
// Safe for concurrent use.
type listenerServer struct {
	mu       sync.Mutex
	protocol Protocol
	addr     string
	opts     *options
	logger   *slog.Logger

	server    *http.Server
	listener  *DrainableListener
	serveDone chan struct{}
}

func newListenerServer(ep Endpoint, host string, o *options) listenerServer {
	return listenerServer{
		protocol: ep.Protocol,
		addr:     ep.Addr(host),
		opts:     o,
		logger:   o.logger.With(logger.Protocol(ep.Protocol.String())),
	}
}

// Protocol reports which variant this server implements.
func (s *listenerServer) Protocol() Protocol {
	return s.protocol
}

// Addr returns the bound address while running, otherwise the configured one.
func (s *listenerServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Active returns the number of open connections, or 0 when not running.
func (s *listenerServer) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return 0
	}
	return s.listener.Active()
}

// serve binds the address and serves handler on it. A non-nil tlsConfig must
// carry the certificates to present.
func (s *listenerServer) serve(ctx context.Context, handler http.Handler, tlsConfig *tls.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return ErrServerAlreadyRunning
	}

	raw, err := s.opts.listen(ctx, "tcp", s.addr)
	if err != nil {
		return errors.Join(ErrBind, fmt.Errorf("%s %s: %w", s.protocol, s.addr, err))
	}
	ln := NewDrainableListener(raw)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: s.opts.readHeaderTimeout,
		IdleTimeout:       s.opts.idleTimeout,
		MaxHeaderBytes:    DefaultMaxHeaderBytes,
		TLSConfig:         tlsConfig,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
	}
	done := make(chan struct{})

	go func() {
		defer close(done)

		var err error
		if tlsConfig != nil {
			err = srv.ServeTLS(ln, "", "")
		} else {
			err = srv.Serve(ln)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("server stopped unexpectedly", logger.Addr(s.addr), logger.Error(err))
		}
	}()

	s.server = srv
	s.listener = ln
	s.serveDone = done

	s.logger.InfoContext(ctx, "server listening", logger.Addr(ln.Addr().String()))
	return nil
}

// Stop closes the socket and every tracked connection, then waits for the
// serve loop to exit. Returns nil when the server is not running. It does not
// honor ctx cancellation: ports are always released.
func (s *listenerServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, ln, done := s.server, s.listener, s.serveDone
	s.server, s.listener, s.serveDone = nil, nil, nil
	s.mu.Unlock()

	if ln == nil {
		return nil
	}

	active := ln.Active()
	if err := ln.Stop(); err != nil {
		s.logger.WarnContext(ctx, "listener close error", logger.Addr(s.addr), logger.Error(err))
	}
	// Releases the http.Server's own connection bookkeeping; the sockets are already closed.
	_ = srv.Close()

	// Serve returns as soon as Accept fails on the closed socket.
	<-done

	s.logger.InfoContext(ctx, "server drained", logger.Addr(s.addr), logger.Connections(active))
	return nil
}
