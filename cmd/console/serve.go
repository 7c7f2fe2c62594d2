package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/colops/console/internal/config"
	"github.com/colops/console/internal/digest"
	"github.com/colops/console/internal/domain/escalation"
	"github.com/colops/console/internal/engine"
	"github.com/colops/console/internal/gateway"
	httpserver "github.com/colops/console/internal/interfaces/http"
	"github.com/colops/console/internal/messaging/kafka"
	"github.com/colops/console/internal/monitoring/logging"
	"github.com/colops/console/internal/monitoring/metrics"
	"github.com/colops/console/internal/reminders"
	"github.com/colops/console/internal/state"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reconciliation loop and the REST interface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (env-only when omitted)")
	return cmd
}

func runServe(ctx context.Context, configPath string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	logger.Info("starting console",
		logging.String("version", version),
		logging.String("gateway", cfg.Gateway.BaseURL),
		logging.Int("port", cfg.Server.Port),
	)

	// State store: redis when configured, in-memory otherwise.  A redis
	// outage at boot degrades to memory instead of refusing to start.
	var store state.Store
	if cfg.Redis.Addr != "" {
		rs, err := state.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, falling back to in-memory state", logging.Err(err))
			store = state.NewMemoryStore()
		} else {
			defer rs.Close()
			store = rs
		}
	} else {
		store = state.NewMemoryStore()
	}

	audit := kafka.NewPublisher(cfg.Kafka, logger)
	defer audit.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	gw := gateway.NewClient(cfg.Gateway, logger)

	eng := engine.New(cfg.Engine, gw, store, audit, m, logger)
	eng.Start(ctx)
	defer eng.Stop()

	thresholds := escalation.Thresholds{
		FirstDays:  cfg.Reminders.FirstDelayDays,
		SecondDays: cfg.Reminders.SecondDelayDays,
		ThirdDays:  cfg.Reminders.ThirdDelayDays,
	}
	rem := reminders.NewService(gw, thresholds, audit, m, logger)
	dig := digest.NewService(gw, audit, m, logger)

	router := httpserver.NewRouter(cfg.Server, eng, rem, dig, registry, logger)
	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", logging.Err(err))
			return err
		}
	case <-ctx.Done():
	}

	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("http shutdown failed", logging.Err(err))
	}
	return nil
}
