// Package config loads process configuration from the environment (and an
// optional .env file). This is the boundary spec §1 names as an external
// collaborator: it is deliberately thin, with no validation framework and
// no remote config source.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	_ = godotenv.Load()
}

// Config groups every recognised option from spec §6, plus the ambient
// database/cache/observability settings needed to run the process.
type Config struct {
	// Database
	DatabaseDSN string
	RedisAddr   string

	// Scraper / Scheduler (spec §6)
	ScraperEnabled       bool
	ScraperIntervalMs    int
	ScraperConcurrency   int
	ScraperOrderPageSize int
	ScraperTimeoutMs     int
	ScraperLeadIDs       []string
	ScraperBaseURL       string

	// Presentation
	UseEstimatedOpenTime bool

	// Simulation
	BacktestCachePath string

	// Observability
	ServiceName string
}

// Load reads configuration from the environment, applying the same
// fallback-default pattern as the teacher's Config.Load.
func Load() *Config {
	return &Config{
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost port=5432 user=postgres dbname=leadtrader password=postgres sslmode=disable"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),

		ScraperEnabled:       getBoolEnv("SCRAPER_ENABLED", true),
		ScraperIntervalMs:    getIntEnv("SCRAPER_INTERVAL_MS", 60_000),
		ScraperConcurrency:   getIntEnv("SCRAPER_CONCURRENCY", 5),
		ScraperOrderPageSize: getIntEnv("SCRAPER_ORDER_PAGE_SIZE", 100),
		ScraperTimeoutMs:     getIntEnv("SCRAPER_TIMEOUT_MS", 15_000),
		ScraperLeadIDs:       getListEnv("SCRAPER_LEAD_IDS", nil),
		ScraperBaseURL:       getEnv("SCRAPER_BASE_URL", "https://api.venue.example"),

		UseEstimatedOpenTime: getBoolEnv("POSITIONING_USE_ESTIMATED_OPEN_TIME", true),

		BacktestCachePath: getEnv("BACKTEST_CACHE_PATH", "backtest_cache.db"),

		ServiceName: getEnv("SERVICE_NAME", "leadtrader-consensus"),
	}
}

// Interval returns the scheduler cadence as a time.Duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.ScraperIntervalMs) * time.Millisecond
}

// Timeout returns the per-endpoint scrape deadline as a time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.ScraperTimeoutMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getBoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getListEnv(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
