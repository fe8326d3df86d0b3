package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360/semexchange/config"
	"github.com/c360/semexchange/consumer"
	"github.com/c360/semexchange/metric"
	"github.com/c360/semexchange/projector"
	"github.com/c360/semexchange/store"
	"github.com/c360/semexchange/store/memstore"
	"github.com/c360/semexchange/store/sqlstore"
	"github.com/c360/semexchange/taxonomy"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the projection consumer and metrics listener",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	registry, metrics := metric.NewRegistry()

	st, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	tax := taxonomy.New(st, logger, metrics)
	proj := projector.New(st, tax, logger, metrics)

	// Warm the taxonomy snapshot so the first events don't pay for it.
	if err := tax.Refresh(ctx); err != nil {
		return fmt.Errorf("initial taxonomy refresh: %w", err)
	}

	cons := consumer.New(consumer.Config{
		URL:           cfg.NATS.URL,
		Stream:        cfg.NATS.Stream,
		Durable:       cfg.NATS.Durable,
		Subject:       cfg.NATS.Subject,
		MaxReconnects: cfg.NATS.MaxReconnects,
		ReconnectWait: cfg.NATS.ReconnectWait,
		AckWait:       cfg.NATS.AckWait,
	}, proj, logger)

	signalCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cons.Start(signalCtx); err != nil {
		return err
	}

	var metricServer *metric.Server
	if cfg.Metrics.Addr != "" {
		metricServer = metric.NewServer(cfg.Metrics.Addr, "/metrics", registry)
		go func() {
			if err := metricServer.Start(); err != nil {
				logger.Error("metrics server failed", "error", err)
				cancel()
			}
		}()
		logger.Info("metrics listener started", "addr", cfg.Metrics.Addr)
	}

	logger.Info("semexchange ready",
		"version", version,
		"platform", cfg.Platform.Name,
		"environment", cfg.Platform.Environment,
		"store", cfg.Store.Backend)

	<-signalCtx.Done()
	logger.Info("shutting down")

	if metricServer != nil {
		if err := metricServer.Stop(); err != nil {
			logger.Error("metrics server stop failed", "error", err)
		}
	}
	if err := cons.Stop(); err != nil {
		logger.Error("consumer stop failed", "error", err)
	}
	return nil
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlstore.Open(cfg.Path)
	default:
		return memstore.New(), nil
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
