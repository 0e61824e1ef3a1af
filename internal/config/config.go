// Package config loads the server configuration from the environment.
// A .env file in the working directory is read first when present;
// variables already set in the environment take precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

// RateLimitConfig sets the per-client windows. VerifyMax counts requests;
// BatchMax counts addresses across batch requests.
type RateLimitConfig struct {
	VerifyMax int           `json:"verify_max"`
	BatchMax  int           `json:"batch_max"`
	Window    time.Duration `json:"window"`
	// StoreTimeout bounds each counter store call; a slow store denies.
	StoreTimeout time.Duration `json:"store_timeout"`
}

type VerifyConfig struct {
	EnableSMTP       bool          `json:"enable_smtp"`
	DNSTimeout       time.Duration `json:"dns_timeout"`
	SMTPTimeout      time.Duration `json:"smtp_timeout"`
	HeloDomain       string        `json:"helo_domain"`
	MailFrom         string        `json:"mail_from"`
	BatchConcurrency int           `json:"batch_concurrency"`
	BatchMaxSize     int           `json:"batch_max_size"`
}

type Config struct {
	Environment string          `json:"environment"`
	ServerPort  string          `json:"server_port"`
	LogLevel    string          `json:"log_level"`
	LogFormat   string          `json:"log_format"`
	SentryDSN   string          `json:"-"`
	Redis       RedisConfig     `json:"redis"`
	RateLimit   RateLimitConfig `json:"rate_limit"`
	Verify      VerifyConfig    `json:"verify"`
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "5000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			VerifyMax: getEnvAsInt("RATE_LIMIT_VERIFY_MAX", 60),
			BatchMax:  getEnvAsInt("RATE_LIMIT_BATCH_MAX", 1000),
			Window:    getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),

			StoreTimeout: getEnvAsDuration("RATE_LIMIT_STORE_TIMEOUT", 500*time.Millisecond),
		},
		Verify: VerifyConfig{
			EnableSMTP:       getEnvAsBool("VERIFY_ENABLE_SMTP", false),
			DNSTimeout:       getEnvAsDuration("VERIFY_DNS_TIMEOUT", 5*time.Second),
			SMTPTimeout:      getEnvAsDuration("VERIFY_SMTP_TIMEOUT", 10*time.Second),
			HeloDomain:       getEnv("VERIFY_HELO_DOMAIN", "localhost"),
			MailFrom:         getEnv("VERIFY_MAIL_FROM", "verify@localhost"),
			BatchConcurrency: getEnvAsInt("BATCH_CONCURRENCY", 5),
			BatchMaxSize:     getEnvAsInt("BATCH_MAX_SIZE", 1000),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	var errs []error
	if c.RateLimit.VerifyMax <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_VERIFY_MAX must be positive"))
	}
	if c.RateLimit.BatchMax <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BATCH_MAX must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.Verify.BatchMaxSize <= 0 {
		errs = append(errs, errors.New("BATCH_MAX_SIZE must be positive"))
	}
	if c.Verify.BatchMaxSize > c.RateLimit.BatchMax {
		errs = append(errs, errors.New("BATCH_MAX_SIZE must not exceed RATE_LIMIT_BATCH_MAX: a full batch could never be admitted"))
	}
	if c.IsProduction() && !c.Redis.Enabled {
		errs = append(errs, errors.New("REDIS_ENABLED is required in production: the rate limiter must be shared"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

// Log writes the effective configuration without secrets.
func (c Config) Log(logger logrus.FieldLogger) {
	logger.WithFields(logrus.Fields{
		"environment":       c.Environment,
		"server_port":       c.ServerPort,
		"redis_enabled":     c.Redis.Enabled,
		"redis_address":     c.Redis.Address,
		"rate_limit_verify": c.RateLimit.VerifyMax,
		"rate_limit_batch":  c.RateLimit.BatchMax,
		"rate_limit_window": c.RateLimit.Window.String(),
		"smtp_enabled":      c.Verify.EnableSMTP,
		"sentry_enabled":    c.SentryDSN != "",
	}).Info("configuration loaded")
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

// getEnvAsDuration accepts Go durations ("30s") or plain milliseconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
