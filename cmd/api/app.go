package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"starter-api/config"
	"starter-api/middleware/cache"
	"starter-api/middleware/httplog"
	"starter-api/middleware/ratelimit"
	"starter-api/middleware/ratelimit/domain"
	"starter-api/middleware/ratelimit/infra"
	"starter-api/routes"
	"starter-api/storage/blob"
	"starter-api/storage/kv"
	"starter-api/storage/notes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type app struct {
	handler http.Handler
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// build monta stores, plugins e rotas. Os janitors param quando ctx termina.
func build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}
	checks := map[string]func(context.Context) error{}

	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, rdb.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var store kv.Store
	switch cfg.KV.Backend {
	case "redis":
		store = kv.NewRedisStore(rdb)
	default:
		mem := kv.NewMemoryStore()
		mem.StartJanitor(ctx)
		store = mem
	}

	db, err := notes.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		a.Close()
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("database handle: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)
	repo := notes.NewRepository(db)
	checks["db"] = repo.Ping

	deps := routes.Deps{
		KV:     store,
		Notes:  repo,
		Bucket: blob.NewDiskBucket(cfg.Bucket.Dir),
		Checks: checks,
		Logger: logger,
	}

	var stats domain.StatsStore
	switch cfg.Rate.Stats {
	case "memory":
		mem := infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.Rate.StatsTrackKeys))
		deps.Stats = mem
		stats = mem
	case "redis":
		rs := infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(cfg.Rate.Prefix+":stats"),
			infra.WithStatsTrackKeys(cfg.Rate.StatsTrackKeys),
		)
		deps.Stats = rs
		stats = rs
	case "prometheus":
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		stats = infra.NewPrometheusStatsStore(reg, "starter")
		deps.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	deps.Cache = cache.New(cache.Options{
		Store:  store,
		Prefix: cfg.Cache.Prefix,
		TTL:    cfg.CacheTTL(),
		Logger: logger,
	})
	deps.Limiter = ratelimit.New(ratelimit.Options{
		Store:          store,
		Stats:          stats,
		Prefix:         cfg.Rate.Prefix,
		Max:            cfg.Rate.Max,
		Window:         cfg.RateWindow(),
		KeyHeader:      cfg.Rate.KeyHeader,
		TrustForwarded: cfg.Rate.TrustForwarded,
		Atomic:         cfg.Rate.Atomic,
		Logger:         logger,
	})

	h := http.Handler(routes.New(deps))

	var guardStore domain.LimiterStore
	if cfg.Guard.RPS > 0 {
		buckets := infra.NewBucketStore(cfg.Guard.RPS, cfg.Guard.Burst)
		buckets.StartJanitor(ctx)
		guardStore = buckets
	}

	a.handler = httplog.Chain(h,
		httplog.RequestID(),
		httplog.RequestLogger(logger.With(zap.String("component", "http"))),
		httplog.Recovery(logger),
		httplog.Middleware(ratelimit.GuardMiddleware(ratelimit.GuardOptions{
			Store:          guardStore,
			Stats:          stats,
			KeyHeader:      cfg.Rate.KeyHeader,
			TrustForwarded: cfg.Rate.TrustForwarded,
			RetryAfter:     cfg.Guard.RetryAfter,
			AddHeaders:     cfg.Guard.AddHeaders,
		})),
		httplog.Middleware(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Max:            cfg.Concurrency.Max,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.Concurrency.Timeout,
			Logger:         logger,
		})),
	)
	return a, nil
}
