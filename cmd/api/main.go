package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/adapter/postgres"
	redis_adapter "github.com/user/advisory-service/internal/adapter/redis"
	"github.com/user/advisory-service/internal/bootstrap"
	"github.com/user/advisory-service/internal/delivery/http/handler"
	"github.com/user/advisory-service/internal/delivery/http/router"
	"github.com/user/advisory-service/internal/extractor"
	"github.com/user/advisory-service/internal/repository"
	"github.com/user/advisory-service/internal/usecase"
	"github.com/user/advisory-service/pkg/config"
	"github.com/user/advisory-service/pkg/logger"
	"github.com/user/advisory-service/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Stderr, "info").Fatal("could not load config", zap.Error(err))
	}

	// --- Logger ---
	log := logger.New(os.Stdout, cfg.LogLevel)
	defer log.Sync()

	// --- Metrics ---
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connections ---
	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer dbpool.Close()
	if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
		log.Fatal("unable to prepare database", zap.Error(err))
	}
	log.Info("PostgreSQL connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("unable to connect to Redis", zap.Error(err))
	}
	log.Info("Redis connection established")

	// --- Repositories ---
	visitedRepo := redis_adapter.NewVisitedRepo(rdb)
	queueRepo := redis_adapter.NewQueueRepo(rdb)
	advisoryRepo := postgres.NewAdvisoryRepo(dbpool)
	failedSectionRepo := postgres.NewFailedSectionRepo(dbpool)
	countryRepo := postgres.NewTableWriter(dbpool)

	pages, closePages, err := bootstrap.PageFetcher(cfg, log)
	if err != nil {
		log.Fatal("unable to build page fetcher", zap.Error(err))
	}
	defer closePages()

	// --- Use Cases ---
	fetcher := usecase.NewSectionFetcher(pages, extractor.New(), usecase.FetcherConfig{
		BaseURL:  cfg.BaseURL,
		Sections: cfg.Sections,
		Workers:  cfg.MaxConcurrency,
	}, log)
	manager := usecase.NewScrapeManager(visitedRepo, queueRepo, advisoryRepo, failedSectionRepo, cfg.DeduplicationTTL, log)
	worker := usecase.NewScrapeWorker(queueRepo, fetcher, advisoryRepo, failedSectionRepo, log)

	var wg sync.WaitGroup
	for i := 0; i < cfg.QueueWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, worker, cfg.QueuePollInterval, log.With(zap.Int("worker_id", id)))
		}(i)
	}

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(manager, countryRepo, map[string]handler.PingFunc{
		"postgres": dbpool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler, log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	wg.Wait()
	log.Info("server exiting")
}

// runWorker drains the scrape queue until ctx is cancelled, sleeping when it is empty.
func runWorker(ctx context.Context, worker usecase.ScrapeWorker, pollInterval time.Duration, log *zap.Logger) {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for ctx.Err() == nil {
		err := worker.ProcessFromQueue(ctx)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrQueueEmpty) && !errors.Is(err, context.Canceled) {
			log.Error("queue processing failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
