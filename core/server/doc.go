// Package server provides the listening side of a single-host TLS edge: a plain
// HTTP server on port 80 that redirects everything to HTTPS, and a TLS server on
// port 443 that serves a caller-supplied handler with a key pair read from disk.
//
// Both servers sit on a DrainableListener, which tracks every accepted
// connection so that stopping a server releases its port immediately, cutting
// in-flight requests instead of waiting for them.
//
// # Basic Usage
//
//	cfg := server.DefaultConfig()
//	cfg.CertDir = []string{"/etc/letsencrypt", "live", "example.com"}
//
//	pair, err := server.NewPair(cfg, handler, server.WithLogger(log))
//	if err != nil {
//		// errors.Is(err, server.ErrConfiguration); nothing has been bound.
//		log.Error("invalid configuration", logger.Error(err))
//		os.Exit(1)
//	}
//
//	if err := pair.Start(ctx); err != nil {
//		// errors.Is(err, server.ErrBind) or errors.Is(err, server.ErrCertificateLoad)
//		os.Exit(1)
//	}
//	defer pair.Stop(context.Background())
//
// # Endpoints
//
// Endpoints are configured as "protocol:port" strings and parsed into the closed
// Protocol variant. HTTP must use port 80 and HTTPS port 443; anything else is a
// configuration error reported by Config.Validate before any socket exists.
// BuildServer maps a validated endpoint to its server implementation.
//
// # Certificates
//
// The TLS server reads privkey.pem and fullchain.pem from the certificate
// directory on every Start, so a restarted pair always serves what is on disk.
// The leaf is inspected and logged (domains, issuer, expiry).
//
// # Pair Lifecycle
//
// Pair.Start binds both servers concurrently and waits for both. If either
// fails the other is stopped, so callers never observe only one port bound.
// Pair.Stop cuts both concurrently. A Pair is single-use; the renewal
// supervisor builds a fresh one for every restart.
//
// # Testing
//
// WithListenFunc swaps the binder, letting tests bind loopback ephemeral ports
// while the configured endpoints stay at 80 and 443.
package server
