package server

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// RedirectServer answers every plain HTTP request with a permanent redirect
// to the same host and path over HTTPS.
type RedirectServer struct {
	listenerServer
}

// NewRedirectServer creates a redirect server for ep. The endpoint is assumed
// to be validated; use BuildServer for the checked path.
func NewRedirectServer(ep Endpoint, cfg Config, opts ...Option) *RedirectServer {
	return &RedirectServer{
		listenerServer: newListenerServer(ep, cfg.Host, newOptions(cfg, opts)),
	}
}

// Start binds the HTTP port. A bind failure is returned as is, never retried.
func (s *RedirectServer) Start(ctx context.Context) error {
	return s.serve(ctx, RedirectHandler(), nil)
}

// RedirectHandler returns a handler that responds 301 with
// Location: https://<host without port><request URI>. It never reads the body.
func RedirectHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := stripPort(r.Host)
		if host == "" {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		http.Redirect(w, r, "https://"+host+r.URL.RequestURI(), http.StatusMovedPermanently)
	})
}

// stripPort removes a trailing :port from a Host header value, keeping
// brackets around IPv6 literals.
func stripPort(hostport string) string {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		// No port present.
		return hostport
	}
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}
