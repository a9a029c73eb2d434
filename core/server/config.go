package server

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Config holds server configuration with environment variable support.
type Config struct {
	// Bind host; empty binds all interfaces.
	Host string `env:"SERVER_HOST" envDefault:"" yaml:"host"`

	// Endpoints as protocol:port, one per protocol.
	Endpoints []string `env:"SERVER_ENDPOINTS" envDefault:"http:80,https:443" envSeparator:"," yaml:"endpoints"`

	// CertDir is the certificate directory as path segments, joined with filepath.Join.
	CertDir []string `env:"SERVER_CERT_DIR" envSeparator:"," yaml:"cert_dir"`

	// Timeouts
	ReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT" envDefault:"15s" yaml:"read_header_timeout"`
	IdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s" yaml:"idle_timeout"`
}

// DefaultConfig returns a Config with the standard endpoints and timeouts.
// CertDir has no default and must be set.
func DefaultConfig() Config {
	return Config{
		Endpoints:         []string{"http:80", "https:443"},
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
}

// CertPath returns the joined certificate directory.
func (c Config) CertPath() string {
	return filepath.Join(c.CertDir...)
}

// Validate checks the configuration without touching the network.
// Every failure matches ErrConfiguration.
func (c Config) Validate() error {
	if _, _, err := c.endpoints(); err != nil {
		return err
	}
	if c.CertPath() == "" {
		return errors.Join(ErrConfiguration, ErrMissingCertDir)
	}
	return nil
}

// endpoints parses and validates the configured endpoints and returns exactly
// one per protocol.
func (c Config) endpoints() (httpEP, httpsEP Endpoint, err error) {
	seen := make(map[Protocol]Endpoint, 2)
	for _, raw := range c.Endpoints {
		ep, err := ParseEndpoint(raw)
		if err != nil {
			return Endpoint{}, Endpoint{}, err
		}
		if err := ep.Validate(); err != nil {
			return Endpoint{}, Endpoint{}, err
		}
		if _, dup := seen[ep.Protocol]; dup {
			return Endpoint{}, Endpoint{}, errors.Join(ErrConfiguration, fmt.Errorf("%w: %s", ErrDuplicateEndpoint, ep.Protocol))
		}
		seen[ep.Protocol] = ep
	}

	for _, p := range []Protocol{ProtocolHTTP, ProtocolHTTPS} {
		if _, ok := seen[p]; !ok {
			return Endpoint{}, Endpoint{}, errors.Join(ErrConfiguration, fmt.Errorf("%w: %s", ErrMissingEndpoint, p))
		}
	}

	return seen[ProtocolHTTP], seen[ProtocolHTTPS], nil
}
