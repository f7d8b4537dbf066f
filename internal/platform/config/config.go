package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	LedgerStore   string // "pgsql" or "memory"
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	MigrationPath string

	// Redis-backed report cache and background queue
	RedisAddr string
	CacheTTL  time.Duration

	// Background worker
	WorkerConcurrency int

	// Export target directory for generated files
	ExportDir string

	// Rate limit in ulule/limiter format, e.g. "100-M" for 100 requests/minute
	RateLimit string

	// Product analytics
	PosthogAPIKey string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("LEDGER_STORE", "pgsql")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATION_PATH", "file://migrations")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("CACHE_TTL", "5m")
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("EXPORT_DIR", "exports")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("POSTHOG_API_KEY", "")

	// Read .env file if it exists
	// This allows overriding defaults with .env file values, which can then be overridden by actual environment variables.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.LedgerStore = viper.GetString("LEDGER_STORE")
	if cfg.LedgerStore != "pgsql" && cfg.LedgerStore != "memory" {
		log.Printf("Warning: Unknown LEDGER_STORE value '%s'. Defaulting to pgsql.\n", cfg.LedgerStore)
		cfg.LedgerStore = "pgsql"
	}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" && cfg.LedgerStore == "pgsql" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
		// Consider returning an error depending on requirements
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	// Load cache TTL (e.g., "5m", "1h")
	cacheTTLStr := viper.GetString("CACHE_TTL")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil {
		cacheTTL = 5 * time.Minute // Default to 5 minutes
		if cacheTTLStr != "" {
			log.Printf("Warning: Invalid value for CACHE_TTL ('%s'). Defaulting to %s.\n", cacheTTLStr, cacheTTL.String())
		}
	}
	cfg.CacheTTL = cacheTTL

	cfg.WorkerConcurrency = viper.GetInt("WORKER_CONCURRENCY")
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 10 // Default concurrency
		log.Printf("Warning: Invalid WORKER_CONCURRENCY. Defaulting to %d.\n", cfg.WorkerConcurrency)
	}

	cfg.ExportDir = viper.GetString("EXPORT_DIR")
	if cfg.ExportDir == "" {
		cfg.ExportDir = "exports" // Default export directory
		log.Printf("Warning: EXPORT_DIR not set. Defaulting to %s.\n", cfg.ExportDir)
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = "100-M" // Default: 100 requests per minute
		log.Printf("Warning: RATE_LIMIT not set. Defaulting to %s.\n", cfg.RateLimit)
	}

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		log.Println("Warning: REDIS_ADDR not set. Report caching and background jobs are disabled.")
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationPath = viper.GetString("MIGRATION_PATH")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	return cfg, nil
}
