// Command dashboard serves the Quantum ML FTSE 100 dashboard: the JSON
// API, the WebSocket slot stream and the Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"quantum-dashboard/config"
	"quantum-dashboard/internal/api"
	"quantum-dashboard/internal/app"
	"quantum-dashboard/internal/logger"
	"quantum-dashboard/internal/scheduler"
	store "quantum-dashboard/internal/store/redis"
)

func main() {
	defaultPath := os.Getenv("DASHBOARD_CONFIG")
	if defaultPath == "" {
		defaultPath = "config.yaml"
	}
	path := flag.String("config", defaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logger.Init("dashboard", level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = store.Dial(ctx, store.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("redis unavailable, mirror disabled", "addr", cfg.Redis.Addr, "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
			log.Info("redis connected", "addr", cfg.Redis.Addr)
		}
	}

	loop := scheduler.NewLoop(0)
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)

	a, err := app.New(app.Options{
		Config:    cfg,
		Scheduler: loop,
		Redis:     rdb,
		Log:       log,
	})
	if err != nil {
		log.Error("app init failed", "error", err)
		os.Exit(1)
	}
	if err := a.Start(ctx); err != nil {
		log.Error("app start failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(a, log.With("component", "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := a.Stop(shutdownCtx); err != nil {
		log.Warn("app stop", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	log.Info("stopped")
}
