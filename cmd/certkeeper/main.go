package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/certkeeper/core/config"
	"github.com/dmitrymomot/certkeeper/core/logger"
	"github.com/dmitrymomot/certkeeper/core/renewal"
	"github.com/dmitrymomot/certkeeper/core/server"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML file applied on top of environment configuration")
	renewNow := flag.Bool("renew-now", false, "Run the first renewal shortly after startup instead of after a full interval")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "certkeeper: %v\n", err)
		os.Exit(1)
	}
	if *configPath != "" {
		if err := config.LoadFile(*configPath, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "certkeeper: %v\n", err)
			os.Exit(1)
		}
	}
	if *renewNow {
		cfg.Renewal.RenewImmediately = true
	}

	log := logger.NewFromConfig(cfg.Log)

	if err := cfg.Server.Validate(); err != nil {
		log.Error("Invalid server configuration", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}

	var sup *renewal.Supervisor
	handler := newHandler(cfg, log, func(context.Context) error { return sup.Err() })

	factory := func() (renewal.ServerPair, error) {
		pair, err := server.NewPair(cfg.Server, handler, server.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return pair, nil
	}

	sup, err := renewal.NewFromConfig(cfg.Renewal, factory, renewal.WithLogger(log))
	if err != nil {
		log.Error("Failed to create renewal supervisor", logger.Component("renewal"), logger.Error(err))
		os.Exit(1)
	}

	log.Info("Starting certkeeper",
		logger.Key("cert_dir", cfg.Server.CertPath()),
		logger.Command(cfg.Renewal.Command),
		logger.Interval(cfg.Renewal.Interval),
		logger.Key("renew_immediately", cfg.Renewal.RenewImmediately))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return sup.Run(ctx) })

	if err := eg.Wait(); err != nil {
		log.Error("certkeeper stopped with error", logger.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped")
}
