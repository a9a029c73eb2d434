// Package middleware provides net/http middleware for the handler served
// behind the TLS server.
//
// Each middleware has the shape func(http.Handler) http.Handler and can be
// composed with Chain, outermost first:
//
//	h := middleware.Chain(site,
//		middleware.RequestLogger(log),
//		middleware.SecurityHeaders(),
//	)
//
// # Request Logging
//
// RequestLogger writes one record per completed request with method, path,
// host, client IP, status and duration. 5xx responses are logged at error,
// 4xx and slow requests at warn. Use RequestLoggerWithConfig to skip paths
// or change the slow-request threshold:
//
//	middleware.RequestLoggerWithConfig(middleware.LoggingConfig{
//		Logger:               log,
//		SlowRequestThreshold: 2 * time.Second,
//		Skip: func(r *http.Request) bool {
//			return r.URL.Path == "/health"
//		},
//	})
//
// # Security Headers
//
// SecurityHeaders sets HSTS and related headers suited to a site that is only
// reachable over HTTPS (plain HTTP is redirected). StrictSecurity adds HSTS
// preload; SecurityHeadersWithConfig accepts any SecurityHeadersConfig.
package middleware
