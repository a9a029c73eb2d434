// Package logger provides structured logging utilities built on Go's standard slog package.
//
// # Basic Usage
//
//	import "github.com/dmitrymomot/certkeeper/core/logger"
//
//	log := logger.New(
//		logger.WithProduction("certkeeper"),
//	)
//
//	log.Info("server listening",
//		logger.Protocol("https"),
//		logger.Addr(":443"),
//	)
//
// Loggers can also be built from environment configuration:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.NewFromConfig(cfg)
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for nil or empty input, which slog drops, so
// callers never need nil checks:
//
//	log.Error("renewal failed",
//		logger.Error(err),            // omitted when err == nil
//		logger.CycleID(id),
//		logger.ExitCode(outcome.ExitCode),
//	)
//
// Components in this module default to Discard() and accept a logger through their
// WithLogger option.
package logger
