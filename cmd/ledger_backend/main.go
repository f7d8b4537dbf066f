package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/ulule/limiter/v3"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	"github.com/bankchen1/fo3-ledger-core/internal/core/services"
	"github.com/bankchen1/fo3-ledger-core/internal/handlers"
	"github.com/bankchen1/fo3-ledger-core/internal/jobs"
	"github.com/bankchen1/fo3-ledger-core/internal/middleware"
	"github.com/bankchen1/fo3-ledger-core/internal/platform/cache"
	"github.com/bankchen1/fo3-ledger-core/internal/platform/config"
	"github.com/bankchen1/fo3-ledger-core/internal/platform/notifier"
	"github.com/bankchen1/fo3-ledger-core/internal/repositories/database/pgsql"
	"github.com/bankchen1/fo3-ledger-core/internal/repositories/memory"
	"github.com/bankchen1/fo3-ledger-core/pkg/database"
)

// @title FO3 Ledger Core API
// @version 1.0
// @description Double-entry ledger engine for custodial wallet platforms.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, cleanup, err := buildRepositories(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize ledger store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	// Optional Redis layer: report cache plus the background job queue.
	var containerOpts []services.ContainerOption
	if cfg.RedisAddr != "" {
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
		containerOpts = append(containerOpts,
			services.WithContainerReportCache(cache.NewReportCache(redisClient, cfg.CacheTTL)))

		enqueuer := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if cerr := enqueuer.Close(); cerr != nil {
				logger.Warn("Error closing job client", slog.String("error", cerr.Error()))
			}
		}()
		containerOpts = append(containerOpts, services.WithTaskEnqueuer(enqueuer))
		logger.Info("Redis connected", slog.String("addr", cfg.RedisAddr))
	}

	events := notifier.NewPosthogNotifier(cfg.PosthogAPIKey, logger)
	defer func() {
		if cerr := events.Close(); cerr != nil {
			logger.Warn("Error closing event notifier", slog.String("error", cerr.Error()))
		}
	}()
	containerOpts = append(containerOpts, services.WithEventNotifier(events))

	container := services.NewServiceContainer(cfg, repos, containerOpts...)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders,
		middleware.HeaderUserID, middleware.HeaderSourceService, middleware.HeaderSystemProcess)
	r.Use(cors.New(corsConfig))

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("rateLimit", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(limitermem.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.LedgerStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	logger.Info("Server exited")
}

// buildRepositories selects the backing store from configuration. The pgsql
// store runs migrations before serving; the memory store needs no setup and
// is intended for local development and integration environments.
func buildRepositories(ctx context.Context, logger *slog.Logger, cfg *config.Config) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.LedgerStore == "memory" {
		logger.Info("Using in-memory ledger store; data will not survive restarts")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established")

	if err := runMigrations(logger, cfg); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	cleanup := func() {
		database.ClosePgxPool(dbPool)
		logger.Info("Database connection pool closed")
	}
	return pgsql.NewRepositoryProvider(dbPool), cleanup, nil
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection compatible with the main pgx pool.
func runMigrations(logger *slog.Logger, cfg *config.Config) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationPath, "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Database migrations applied successfully")
	}
	return nil
}
