package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit nil checks.

// ============================================================================
// Error Handling
// ============================================================================

// Errors groups multiple non-nil errors under the key "errors".
// Uses index-based keys to preserve error order. Returns empty Attr for all nil errors.
func Errors(errs ...error) slog.Attr {
	count := 0
	for _, err := range errs {
		if err != nil {
			count++
		}
	}
	if count == 0 {
		return slog.Attr{}
	}

	as := make([]slog.Attr, 0, count)
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ============================================================================
// Timing
// ============================================================================

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Interval creates an attribute for a scheduling interval.
func Interval(d time.Duration) slog.Attr {
	return slog.Duration("interval", d)
}

// Time creates a time attribute with a custom key. Returns empty Attr for zero time.
func Time(key string, t time.Time) slog.Attr {
	if t.IsZero() {
		return slog.Attr{}
	}
	return slog.Time(key, t)
}

// ============================================================================
// Network and Servers
// ============================================================================

// Addr creates an attribute for a listen or remote address.
func Addr(addr string) slog.Attr {
	if addr == "" {
		return slog.Attr{}
	}
	return slog.String("addr", addr)
}

// Protocol creates an attribute for a served protocol (http/https).
func Protocol(p string) slog.Attr {
	return slog.String("protocol", p)
}

// Host creates an attribute for a request or certificate host.
func Host(host string) slog.Attr {
	if host == "" {
		return slog.Attr{}
	}
	return slog.String("host", host)
}

// Connections creates an attribute for a number of tracked connections.
func Connections(n int) slog.Attr {
	return slog.Int("connections", n)
}

// Method creates an attribute for HTTP methods.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Path creates an attribute for URL paths.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// StatusCode creates an attribute for HTTP status codes.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// ClientIP creates an attribute for client IP addresses.
func ClientIP(ip string) slog.Attr {
	return slog.String("client_ip", ip)
}

// ============================================================================
// Renewal
// ============================================================================

// CycleID creates an attribute identifying one renewal cycle.
func CycleID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("cycle_id", id)
}

// State creates an attribute for a lifecycle state.
func State(s string) slog.Attr {
	return slog.String("state", s)
}

// ExitCode creates an attribute for a child process exit code.
func ExitCode(code int) slog.Attr {
	return slog.Int("exit_code", code)
}

// Stream creates an attribute naming a captured output stream (stdout/stderr).
func Stream(name string) slog.Attr {
	return slog.String("stream", name)
}

// Command creates an attribute for an executed command line.
func Command(argv []string) slog.Attr {
	if len(argv) == 0 {
		return slog.Attr{}
	}
	return slog.Any("command", argv)
}

// ============================================================================
// Generic Metadata
// ============================================================================

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Key creates a generic key-value attribute.
func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}
