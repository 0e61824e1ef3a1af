package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimode/mailcheck/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env file

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "5000", cfg.ServerPort)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.VerifyMax)
	assert.Equal(t, 1000, cfg.RateLimit.BatchMax)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimit.StoreTimeout)
	assert.Equal(t, 5*time.Second, cfg.Verify.DNSTimeout)
	assert.Equal(t, 10*time.Second, cfg.Verify.SMTPTimeout)
	assert.Equal(t, 5, cfg.Verify.BatchConcurrency)
	assert.Equal(t, 1000, cfg.Verify.BatchMaxSize)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RATE_LIMIT_VERIFY_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("VERIFY_DNS_TIMEOUT", "1500")
	t.Setenv("VERIFY_ENABLE_SMTP", "1")
	t.Setenv("BATCH_CONCURRENCY", "not-a-number")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 5, cfg.RateLimit.VerifyMax)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 1500*time.Millisecond, cfg.Verify.DNSTimeout)
	assert.True(t, cfg.Verify.EnableSMTP)
	assert.Equal(t, 5, cfg.Verify.BatchConcurrency, "invalid values fall back")
}

func TestLoad_ProductionRequiresRedis(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("REDIS_ENABLED", "false")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ENABLED")
}

func TestValidate_BatchSizeWithinBatchLimit(t *testing.T) {
	cfg := config.Config{
		LogLevel:  "info",
		RateLimit: config.RateLimitConfig{VerifyMax: 60, BatchMax: 100, Window: time.Minute},
		Verify:    config.VerifyConfig{BatchMaxSize: 500},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_MAX_SIZE")

	cfg.Verify.BatchMaxSize = 100
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := config.Config{
		LogLevel:  "loud",
		RateLimit: config.RateLimitConfig{VerifyMax: 0, BatchMax: 1, Window: time.Minute},
		Verify:    config.VerifyConfig{BatchMaxSize: 10},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_VERIFY_MAX")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}
