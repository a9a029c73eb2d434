package server

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync"
)

// DefaultTLSConfig returns a secure default TLS configuration following
// Mozilla's Intermediate compatibility recommendations.
// Supports TLS 1.2+ with ECDHE AEAD cipher suites.
func DefaultTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			// TLS 1.3 suites are not configurable and always enabled.
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}
}

// TLSServer terminates TLS on the HTTPS port and hands decrypted requests
// to the supplied handler unchanged.
type TLSServer struct {
	listenerServer
	certDir string
	handler http.Handler

	infoMu sync.RWMutex
	info   *CertificateInfo
}

// NewTLSServer creates a TLS server for ep. The endpoint is assumed to be
// validated; use BuildServer for the checked path.
func NewTLSServer(ep Endpoint, cfg Config, handler http.Handler, opts ...Option) *TLSServer {
	return &TLSServer{
		listenerServer: newListenerServer(ep, cfg.Host, newOptions(cfg, opts)),
		certDir:        cfg.CertPath(),
		handler:        handler,
	}
}

// Start loads the key pair from the certificate directory, then binds the
// HTTPS port. A load failure matches ErrCertificateLoad and nothing is bound.
func (s *TLSServer) Start(ctx context.Context) error {
	cert, info, err := LoadCertificate(ctx, s.certDir)
	if err != nil {
		return err
	}

	base := s.opts.tlsConfig
	if base == nil {
		base = DefaultTLSConfig()
	}
	cfg := base.Clone()
	cfg.Certificates = []tls.Certificate{cert}

	if err := s.serve(ctx, s.handler, cfg); err != nil {
		return err
	}

	s.infoMu.Lock()
	s.info = info
	s.infoMu.Unlock()

	info.log(ctx, s.logger)
	return nil
}

// Certificate returns details of the certificate loaded by the last successful Start.
func (s *TLSServer) Certificate() *CertificateInfo {
	s.infoMu.RLock()
	defer s.infoMu.RUnlock()
	return s.info
}
