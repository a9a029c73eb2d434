// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/certkeeper/core/config"
//
//	type RenewalConfig struct {
//		Interval time.Duration `env:"RENEWAL_INTERVAL" envDefault:"12h"`
//		Command  []string      `env:"RENEWAL_COMMAND" envDefault:"certbot,renew"`
//	}
//
//	func main() {
//		var cfg RenewalConfig
//
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # File Overlay
//
// LoadFile decodes a YAML document on top of an already loaded value. Only keys
// present in the file are changed:
//
//	config.MustLoad(&cfg)
//	if *configPath != "" {
//		if err := config.LoadFile(*configPath, &cfg); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 RenewalConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 RenewalConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
package config
