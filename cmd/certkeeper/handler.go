package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/certkeeper/core/health"
	"github.com/dmitrymomot/certkeeper/core/logger"
	"github.com/dmitrymomot/certkeeper/core/static"
	"github.com/dmitrymomot/certkeeper/middleware"
)

// newHandler builds the handler served over HTTPS: health probes plus the
// static site. A missing site directory is logged and answered with 404s.
func newHandler(cfg Config, log *slog.Logger, ready func(context.Context) error) http.Handler {
	site, err := static.Dir(cfg.StaticDir, static.WithCacheControl(cfg.CacheControl))
	if err != nil {
		log.Warn("static site unavailable; serving 404", logger.Component("static"), logger.Error(err))
		site = http.NotFoundHandler()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health/live", health.Liveness())
	mux.Handle("GET /health/ready", health.Readiness(log, ready))
	mux.Handle("/", site)

	return middleware.Chain(mux,
		middleware.RequestLoggerWithConfig(middleware.LoggingConfig{
			Logger: log,
			Skip: func(r *http.Request) bool {
				return r.URL.Path == "/health/live"
			},
		}),
		middleware.SecurityHeaders(),
	)
}
