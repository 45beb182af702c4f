package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskboard/internal/config"
	"taskboard/internal/events"
	"taskboard/internal/handlers"
	"taskboard/internal/logger"
	"taskboard/internal/metrics"
	"taskboard/internal/scheduler"
	"taskboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Get()

	// Initialize store
	s, err := openStore(cfg)
	if err != nil {
		logger.Fatal("failed to initialize store", "err", err)
	}
	defer s.Close()

	if cfg.SeedDemo {
		if err := store.Seed(context.Background(), s, cfg.Now()); err != nil {
			logger.Fatal("failed to seed store", "err", err)
		}
	}
	if stats, err := s.Stats(context.Background()); err == nil {
		metrics.ObserveStats(stats)
	}

	hub := events.NewHub(cfg.AllowedOrigin, logger.With("component", "events"))
	defer hub.Close()

	h := handlers.New(s, hub, cfg.Now, logger.With("component", "handlers"))

	// Urgent sweep
	sched := scheduler.New(cfg.Location)
	if cfg.UrgentSweep != "" {
		sweep := scheduler.NewUrgentSweep(s, hub, cfg.Now, logger.With("component", "scheduler"))
		if _, err := sched.Schedule(cfg.UrgentSweep, sweep.Job()); err != nil {
			logger.Fatal("failed to schedule urgent sweep", "err", err)
		}
		sweep.Job()()
	}
	sched.Start()
	defer sched.Stop()

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/ws", hub)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		h.Routes(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", "addr", "http://localhost"+cfg.Addr(), "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "err", err)
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		return store.NewSQLiteStore(cfg.SQLiteDSN, store.WithClock(cfg.Now))
	default:
		return store.NewMemoryStore(store.WithClock(cfg.Now)), nil
	}
}
