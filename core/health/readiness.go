package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/certkeeper/core/logger"
)

// Readiness runs every check and returns "READY" if all pass, or 503 with
// "NOT READY" on the first failure, which is logged.
//
// Example:
//
//	mux.Handle("GET /health/ready", health.Readiness(log,
//		func(context.Context) error { return sup.Err() },
//	))
func Readiness(log *slog.Logger, fn ...func(context.Context) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, f := range fn {
			if err := f(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "Readiness check failed", logger.Error(err))
				writeText(w, http.StatusServiceUnavailable, "NOT READY")
				return
			}
		}

		writeText(w, http.StatusOK, "READY")
	})
}
