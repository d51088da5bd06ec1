package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/vlad-alaukhov/Docibot/internal/adapters/http"
	"github.com/vlad-alaukhov/Docibot/internal/bootstrap"
	"github.com/vlad-alaukhov/Docibot/internal/config"
	"github.com/vlad-alaukhov/Docibot/internal/observability/logging"
	"github.com/vlad-alaukhov/Docibot/internal/observability/metrics"
)

const service = "docibot-bot"

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

	botMetrics := metrics.NewBotMetrics(service, app.Sessions.Len)
	router := httpadapter.NewRouter(app.Assistant, botMetrics, cfg.RateLimitPerMinute, service, logger)

	mux := http.NewServeMux()
	mux.Handle("/", router.Handler())
	mux.Handle("/metrics", botMetrics.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("bot_listening", "port", cfg.APIPort, "backend", cfg.IndexBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("bot server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("bot_shutdown_error", "error", err)
	}
}
