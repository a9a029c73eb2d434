package server

import "errors"

var (
	// Configuration errors, raised before any socket is bound.
	ErrConfiguration     = errors.New("invalid server configuration")
	ErrUnknownProtocol   = errors.New("unknown protocol")
	ErrInvalidPort       = errors.New("invalid port for protocol")
	ErrMissingCertDir    = errors.New("certificate directory is required")
	ErrMissingHandler    = errors.New("request handler is required")
	ErrMissingEndpoint   = errors.New("endpoint missing for protocol")
	ErrDuplicateEndpoint = errors.New("duplicate endpoint for protocol")

	// ErrBind is returned when a port cannot be acquired.
	ErrBind = errors.New("failed to bind port")

	// ErrCertificateLoad is returned when the key or certificate chain is missing or unreadable.
	ErrCertificateLoad = errors.New("failed to load certificate")

	// Server lifecycle errors
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrPairAlreadyRunning   = errors.New("server pair is already running")
)
