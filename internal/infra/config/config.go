package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ScanCronOff disables periodic re-scans; only the initial scan runs.
const ScanCronOff = "off"

// AppConfig holds all configuration for the notifier service
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64
	LogLevel        string
	Environment     string

	RedisAddr         string // empty disables the dismissal cache
	RedisPassword     string
	RedisDB           int
	DismissalCacheTTL time.Duration

	ScanCronSpec    string
	ScanSettleDelay time.Duration
	ScanTimeout     time.Duration
	DefaultTimeZone string

	MetricsAddr        string // empty disables the /metrics endpoint
	TerminalAlerts     bool
	WriteRetryAttempts uint64
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.DismissalCacheTTL, err = time.ParseDuration(getEnv("DISMISSAL_CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("invalid DISMISSAL_CACHE_TTL: %w", err)
	}

	cfg.ScanCronSpec = strings.TrimSpace(getEnv("SCAN_CRON_SPEC", "@every 1m"))
	if cfg.ScanSettleDelay, err = time.ParseDuration(getEnv("SCAN_SETTLE_DELAY", "3s")); err != nil {
		return nil, fmt.Errorf("invalid SCAN_SETTLE_DELAY: %w", err)
	}
	if cfg.ScanTimeout, err = time.ParseDuration(getEnv("SCAN_TIMEOUT", "45s")); err != nil {
		return nil, fmt.Errorf("invalid SCAN_TIMEOUT: %w", err)
	}

	cfg.DefaultTimeZone = getEnv("DEFAULT_TIMEZONE", "UTC")
	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIMEZONE: %w", err)
	}

	cfg.MetricsAddr = getEnv("METRICS_ADDR", ":9090")
	if cfg.TerminalAlerts, err = strconv.ParseBool(getEnv("TERMINAL_ALERTS", "false")); err != nil {
		return nil, fmt.Errorf("invalid TERMINAL_ALERTS: %w", err)
	}
	if cfg.WriteRetryAttempts, err = strconv.ParseUint(getEnv("WRITE_RETRY_ATTEMPTS", "3"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid WRITE_RETRY_ATTEMPTS: %w", err)
	}

	return cfg, nil
}

// PeriodicScan reports whether a cron re-scan is configured.
func (c *AppConfig) PeriodicScan() bool {
	return c.ScanCronSpec != "" && !strings.EqualFold(c.ScanCronSpec, ScanCronOff)
}

// Location returns the default time zone, UTC if it cannot be loaded.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
