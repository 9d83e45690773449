package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/mikakort/IAPserver/api/routes"
	"github.com/mikakort/IAPserver/internal/deliveries"
	"github.com/mikakort/IAPserver/internal/dispatch"
	"github.com/mikakort/IAPserver/internal/events"
	"github.com/mikakort/IAPserver/internal/ingest"
	"github.com/mikakort/IAPserver/internal/receipts"
	"github.com/mikakort/IAPserver/internal/stats"
	"github.com/mikakort/IAPserver/internal/subscriptions"
	"github.com/mikakort/IAPserver/pkg/config"
	"github.com/mikakort/IAPserver/pkg/db"
	"github.com/mikakort/IAPserver/pkg/logger"
	"github.com/mikakort/IAPserver/pkg/metrics"
	"github.com/mikakort/IAPserver/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	ingestMetrics := metrics.NewIngestMetrics(registry)

	eventsRepo := events.NewRepository(dbClient.DB())
	snapshotsRepo := subscriptions.NewRepository(dbClient.DB())
	deliveriesRepo := deliveries.NewRepository(dbClient.DB())

	dispatcher, err := dispatch.New(dispatch.Params{
		Config:  cfg.Webhook,
		Repo:    deliveriesRepo,
		Logger:  logg,
		Metrics: ingestMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}
	dispatcher.Start(context.Background())

	ingestService, err := ingest.NewService(ingest.ServiceParams{
		SharedSecret: cfg.Notifications.SharedSecret,
		Events:       eventsRepo,
		Snapshots:    snapshotsRepo,
		Dispatcher:   dispatcher,
		TxRunner:     dbClient,
		Logger:       logg,
		Metrics:      ingestMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ingest service", err)
		os.Exit(1)
	}

	subscriptionsService, err := subscriptions.NewService(snapshotsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	statsService, err := stats.NewService(eventsRepo, snapshotsRepo, deliveriesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	receiptClient, err := receipts.NewClient(cfg.Receipts)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipt client", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			ingestService,
			subscriptionsService,
			statsService,
			receiptClient,
			metricsHandler,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := multierr.Combine(
			server.Shutdown(shutdownCtx),
			dispatcher.Close(),
		)
		if err != nil {
			logg.Error(ctx, "shutdown finished with errors", err)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}
