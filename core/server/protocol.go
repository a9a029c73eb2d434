package server

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Protocol is the closed set of protocols a pair serves.
type Protocol int

const (
	ProtocolHTTP Protocol = iota + 1
	ProtocolHTTPS
)

// ParseProtocol maps "http" or "https" (case-insensitive) to a Protocol.
func ParseProtocol(name string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "http":
		return ProtocolHTTP, nil
	case "https":
		return ProtocolHTTPS, nil
	default:
		return 0, errors.Join(ErrConfiguration, fmt.Errorf("%w: %q", ErrUnknownProtocol, name))
	}
}

func (p Protocol) String() string {
	switch p {
	case ProtocolHTTP:
		return "http"
	case ProtocolHTTPS:
		return "https"
	default:
		return "protocol(" + strconv.Itoa(int(p)) + ")"
	}
}

// Port returns the fixed port the protocol must be served on, or 0 for unknown protocols.
func (p Protocol) Port() int {
	switch p {
	case ProtocolHTTP:
		return HTTPPort
	case ProtocolHTTPS:
		return HTTPSPort
	default:
		return 0
	}
}

// Endpoint is one protocol/port pair from configuration.
type Endpoint struct {
	Protocol Protocol
	Port     int
}

// ParseEndpoint parses "proto:port" or a bare "proto" (which takes the protocol's port).
// It does not check the port against the protocol; see Endpoint.Validate.
func ParseEndpoint(s string) (Endpoint, error) {
	name, portStr, hasPort := strings.Cut(strings.TrimSpace(s), ":")

	proto, err := ParseProtocol(name)
	if err != nil {
		return Endpoint{}, err
	}

	if !hasPort {
		return Endpoint{Protocol: proto, Port: proto.Port()}, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Endpoint{}, errors.Join(ErrConfiguration, fmt.Errorf("%w: %s endpoint %q", ErrInvalidPort, proto, s))
	}

	return Endpoint{Protocol: proto, Port: port}, nil
}

// Validate reports a configuration error when the port differs from the protocol's fixed port.
func (e Endpoint) Validate() error {
	want := e.Protocol.Port()
	if want == 0 {
		return errors.Join(ErrConfiguration, fmt.Errorf("%w: %s", ErrUnknownProtocol, e.Protocol))
	}
	if e.Port != want {
		return errors.Join(ErrConfiguration, fmt.Errorf("%w: %s must use port %d, got %d", ErrInvalidPort, e.Protocol, want, e.Port))
	}
	return nil
}

// Addr joins host and port into a listen address.
func (e Endpoint) Addr(host string) string {
	return net.JoinHostPort(host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return e.Protocol.String() + ":" + strconv.Itoa(e.Port)
}
