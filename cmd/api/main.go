package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"starter-api/config"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown incomplete", zap.Error(err))
		}
	}()

	logger.Info("api listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("kv", cfg.KV.Backend),
		zap.String("db", cfg.DB.Driver),
		zap.String("bucket", cfg.Bucket.Dir),
	)
	logger.Info("rate",
		zap.Int("max", cfg.Rate.Max),
		zap.Int("window", cfg.Rate.WindowSeconds),
		zap.String("keyHeader", cfg.Rate.KeyHeader),
		zap.Bool("trustForwarded", cfg.Rate.TrustForwarded),
		zap.Bool("atomic", cfg.Rate.Atomic),
		zap.String("stats", cfg.Rate.Stats),
	)
	logger.Info("guard",
		zap.Float64("rps", cfg.Guard.RPS),
		zap.Int("burst", cfg.Guard.Burst),
		zap.Int("concurrencyMax", cfg.Concurrency.Max),
		zap.Duration("acquireTimeout", cfg.Concurrency.Timeout),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
