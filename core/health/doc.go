// Package health provides HTTP handlers for service health monitoring.
//
// Handlers:
//   - Liveness: Process is running (no dependency checks)
//   - Readiness: All checks pass
//   - NoContent: Returns 204 for minimal overhead
//
// Usage:
//
//	mux.Handle("GET /health/live", health.Liveness())
//	mux.Handle("GET /health/ready", health.Readiness(log, checkRenewal))
//	mux.Handle("GET /ping", health.NoContent())
//
// Checks must follow func(context.Context) error signature:
//
//	func checkRenewal(context.Context) error {
//		return supervisor.Err()
//	}
package health
