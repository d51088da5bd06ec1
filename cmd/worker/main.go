package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vlad-alaukhov/Docibot/internal/bootstrap"
	"github.com/vlad-alaukhov/Docibot/internal/config"
	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
	"github.com/vlad-alaukhov/Docibot/internal/observability/logging"
	"github.com/vlad-alaukhov/Docibot/internal/observability/metrics"
)

const service = "docibot-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if app.Bus == nil {
		log.Fatalf("worker requires NATS_URL to be set")
	}

	workerMetrics := metrics.NewWorkerMetrics(service)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("worker metrics server error: %v", err)
		}
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Bus.SubscribeSessionEvents(ctx, func(handlerCtx context.Context, event domain.SessionEvent) error {
		workerMetrics.EventStarted(service, event.OccurredAt)
		status := "ok"

		logger.Info("session_event",
			"event_id", event.ID,
			"type", string(event.Type),
			"user_id", event.UserID,
			"category", event.Category,
			"results", event.Results,
		)

		workerMetrics.EventFinished(service, string(event.Type), status)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
