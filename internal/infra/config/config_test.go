package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost/deadlines")
	t.Setenv("ADMIN_TELEGRAM_ID", "1000")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, int64(1000), cfg.AdminTelegramID)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "@every 1m", cfg.ScanCronSpec)
	assert.True(t, cfg.PeriodicScan())
	assert.Equal(t, 3*time.Second, cfg.ScanSettleDelay)
	assert.Equal(t, 5*time.Minute, cfg.DismissalCacheTTL)
	assert.Equal(t, uint64(3), cfg.WriteRetryAttempts)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SCAN_CRON_SPEC", "off")
	t.Setenv("SCAN_SETTLE_DELAY", "500ms")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("TERMINAL_ALERTS", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.PeriodicScan())
	assert.Equal(t, 500*time.Millisecond, cfg.ScanSettleDelay)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.TerminalAlerts)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "missing token", key: "TELEGRAM_TOKEN", val: ""},
		{name: "bad admin id", key: "ADMIN_TELEGRAM_ID", val: "admin"},
		{name: "bad settle delay", key: "SCAN_SETTLE_DELAY", val: "soon"},
		{name: "bad time zone", key: "DEFAULT_TIMEZONE", val: "Nowhere/Special"},
		{name: "bad retry attempts", key: "WRITE_RETRY_ATTEMPTS", val: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
