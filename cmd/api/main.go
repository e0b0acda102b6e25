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
	httpx "github.com/meblomat/meblomat/internal/http"
	"github.com/meblomat/meblomat/internal/observability"
	"github.com/meblomat/meblomat/internal/queue/redisclient"
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

	// tracing
	shutdownTracer, err := observability.InitTracer(context.Background(), "meblomat-api", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracing disabled", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	// metrics
	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	// the pool connects lazily; an unreachable database degrades the
	// dashboard to sample data instead of killing the process
	pool, err := db.NewPool(cfg.DatabaseURL)

	if err != nil {
		log.Error("invalid database config", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Ping(pool); err != nil {
		log.Warn("database unreachable at startup, dashboard will serve sample data", "err", err)
	} else {
		seedCtx, cancel := config.WithTimeout(5 * time.Second)

		if err := db.EnsureAdminUser(seedCtx, pool, cfg); err != nil {
			log.Warn("admin seed failed", "err", err)
		}

		cancel()
	}

	var rds *redisclient.Client

	if cfg.RedisAddr != "" {
		rds = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rds.Close()

		pingCtx, cancel := config.WithTimeout(2 * time.Second)

		if err := rds.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, rate limiting falls back to memory", "err", err)
			rds = nil
		}

		cancel()
	}

	router := httpx.NewRouter(httpx.Deps{
		Cfg:          cfg,
		Log:          log,
		Pool:         pool,
		Prom:         prom,
		PromRegistry: registry,
		Redis:        rds,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)

		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}

		_ = shutdownTracer(ctx)
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")
	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
