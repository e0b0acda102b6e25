package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/meblomat/meblomat/internal/config"
	"github.com/meblomat/meblomat/internal/db"
	"github.com/meblomat/meblomat/internal/notifications"
	"github.com/meblomat/meblomat/internal/observability"
	"github.com/meblomat/meblomat/internal/queue/worker"
	"github.com/meblomat/meblomat/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	pool, err := db.NewPool(cfg.DatabaseURL)

	if err != nil {
		log.Error("invalid database config", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	jobsRepo := postgres.NewJobsRepo(pool, prom)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log),
		notifications.ProtectedNotifierConfig{},
	)

	w := worker.New(worker.Config{
		PollInterval: 1 * time.Second,
		LockTTL:      60 * time.Second,
		SiteURL:      cfg.SiteURL,
	}, jobsRepo, notifier, log, prom)

	// health probes on a side port
	healthSrv := &http.Server{
		Addr:              ":9091",
		Handler:           w.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("worker health server failed", "err", err)
		}
	}()

	log.Info("worker started", "env", cfg.Env)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	_ = healthSrv.Shutdown(shutdownCtx)

	log.Info("worker shutdown complete")
}
