package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"matchstats/internal/cache"
	"matchstats/internal/config"
	"matchstats/internal/db"
	"matchstats/internal/logging"
	"matchstats/internal/observability"
	"matchstats/internal/processor"
	queue "matchstats/internal/queue"
	"matchstats/internal/ratelimit"
	"matchstats/internal/riot"
	"matchstats/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config load failed: %v", err)
		os.Exit(1)
	}
	logging.SetLevel(cfg.LogLevel)

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Errorf("db connection failed: %v", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Errorf("db migration failed: %v", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Errorf("invalid redis url: %v", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	metrics := observability.NewMetrics("matchstats", nil)
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, metrics)
	}

	limiter := ratelimit.New(cfg.RequestsPerSecond, time.Second, cfg.RateLimitTimeout)
	riotClient, err := riot.NewClient(cfg.RiotAPIKey, limiter,
		riot.WithAccountBaseURL(cfg.RiotAccountBaseURL),
		riot.WithMatchBaseURL(cfg.RiotMatchBaseURL),
		riot.WithPlatformBaseURL(cfg.RiotPlatformBaseURL),
		riot.WithMatchCount(cfg.MatchCount),
		riot.WithQueueID(cfg.QueueID),
		riot.WithSeasonStart(cfg.SeasonStartEpoch),
		riot.WithMetrics(metrics),
	)
	if err != nil {
		logger.Errorf("riot client setup failed: %v", err)
		os.Exit(1)
	}

	resolver := service.NewAccountResolver(riotClient, db.NewAccountReader(pool), cache.NewPUUIDCache(redisClient, cfg.PUUIDCacheTTL))
	svc := service.NewMatchAggregationService(resolver, riotClient, db.NewMatchRecordStore(pool), service.Options{
		RemakeThresholdMinutes: cfg.RemakeThresholdMinutes,
		Role:                   cfg.AggregateRole,
		FetchConcurrency:       cfg.FetchConcurrency,
		Metrics:                metrics,
		Ranks:                  riotClient,
		Benchmarks:             db.NewBenchmarkReader(pool),
	})

	proc := processor.NewRefreshProcessor(svc, metrics)
	q := queue.NewRedisQueue(redisClient, cfg.RedisQueue)

	// Use concurrent processing if worker count > 1
	if cfg.WorkerCount > 1 {
		logger.Infof("starting concurrent consumption of %s with %d workers", q.Key(), cfg.WorkerCount)
		if err := q.ConsumeConcurrent(ctx, cfg.WorkerCount, cfg.JobBufferSize, proc.Handle); err != nil && ctx.Err() == nil {
			logger.Errorf("queue consumption ended: %v", err)
			os.Exit(1)
		}
	} else {
		logger.Infof("starting single-threaded consumption of %s", q.Key())
		if err := q.Consume(ctx, proc.Handle); err != nil && ctx.Err() == nil {
			logger.Errorf("queue consumption ended: %v", err)
			os.Exit(1)
		}
	}
}

func serveMetrics(ctx context.Context, addr string, metrics *observability.Metrics) {
	logger := logging.Logger()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("metrics server failed: %v", err)
	}
}
