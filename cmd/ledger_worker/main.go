package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/bankchen1/fo3-ledger-core/internal/core/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/bankchen1/fo3-ledger-core/internal/jobs"
	"github.com/bankchen1/fo3-ledger-core/internal/platform/cache"
	"github.com/bankchen1/fo3-ledger-core/internal/platform/config"
	"github.com/bankchen1/fo3-ledger-core/internal/platform/notifier"
	"github.com/bankchen1/fo3-ledger-core/internal/repositories/database/pgsql"
	"github.com/bankchen1/fo3-ledger-core/pkg/database"
)

// The worker processes queued exports, audit redeliveries, validation runs
// and period closes. It shares the service layer with the API binary but
// registers no HTTP routes.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.RedisAddr == "" {
		logger.Error("REDIS_ADDR is required for the background worker")
		os.Exit(1)
	}
	if cfg.LedgerStore != "pgsql" {
		// Queued tasks act on durable data; an in-process memory store would
		// be invisible to the API binary.
		logger.Error("Background worker requires the pgsql ledger store", slog.String("store", cfg.LedgerStore))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("Failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.Warn("Error closing Redis client", slog.String("error", cerr.Error()))
		}
	}()

	events := notifier.NewPosthogNotifier(cfg.PosthogAPIKey, logger)
	defer func() {
		if cerr := events.Close(); cerr != nil {
			logger.Warn("Error closing event notifier", slog.String("error", cerr.Error()))
		}
	}()

	// No task enqueuer here: failed tasks are retried by the queue itself,
	// so the worker never re-enqueues its own work.
	container := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(dbPool),
		services.WithEventNotifier(events),
		services.WithContainerReportCache(cache.NewReportCache(redisClient, cfg.CacheTTL)))

	processor := jobs.NewProcessor(container, logger)

	// Nightly integrity sweep over the whole ledger.
	validationTask, err := jobs.NewValidationRunTask(jobs.ValidationRunPayload{
		Request: dto.ValidateBookkeepingRequest{},
	})
	if err != nil {
		logger.Error("Failed to build validation task", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Month end close; the processor resolves the period boundary when the
	// task actually runs.
	periodCloseTask, err := jobs.NewPeriodCloseTask(jobs.PeriodClosePayload{
		Request: dto.PeriodCloseRequest{CloseType: "month"},
	})
	if err != nil {
		logger.Error("Failed to build period close task", slog.String("error", err.Error()))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger,
		Processor:   processor,
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: validationTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 1 * *", Task: periodCloseTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("Failed to initialize worker", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Worker starting",
		slog.String("redis", cfg.RedisAddr),
		slog.Int("concurrency", cfg.WorkerConcurrency))

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Worker exited")
}
