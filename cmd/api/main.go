package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"civicdesk.org/internal/auth"
	"civicdesk.org/internal/complaint"
	"civicdesk.org/internal/config"
	"civicdesk.org/internal/httpapi"
	"civicdesk.org/internal/obs"
	"civicdesk.org/internal/store/pg"
	"civicdesk.org/internal/stream"
)

var version = "0.3.0"

func main() {
	obs.Init()
	logger := obs.Logger()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	var (
		db         *sql.DB
		authStore  auth.Store
		complaints complaint.Service
	)
	if cfg.PostgresDSN != "" {
		store, err := pg.Open(cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("open postgres", zap.Error(err))
		}
		defer store.Close()
		db = store.DB()
		authStore = store
		complaints = store
	} else {
		// Dev mode without a database keeps everything in memory.
		logger.Warn("no CIVICDESK_PG_DSN set, using in-memory stores")
		authStore = auth.NewInMemory()
		complaints = complaint.NewInMemory()
	}

	authSvc := auth.NewService(authStore,
		auth.WithTokenTTL(time.Duration(cfg.TokenTTL)*time.Minute))
	hub := stream.NewHub()

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, authSvc, complaints, hub)
	api.SetUploadDir(cfg.UploadDir)
	api.SetRateLimit(cfg.RateBurst, cfg.RatePerSec)
	api.SetMaxBodyBytes(cfg.MaxBodyBytes)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// WebSocket subscribers hold their connection open; the write
		// timeout applies per frame inside the handler instead.
		IdleTimeout: 60 * time.Second,
	}

	logger.Info("starting civicdesk-api",
		zap.String("version", version),
		zap.String("addr", srv.Addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info("stopped")
}
