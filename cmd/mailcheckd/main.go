// Command mailcheckd serves the verifier over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/optimode/mailcheck"
	"github.com/optimode/mailcheck/internal/config"
	"github.com/optimode/mailcheck/internal/server"
	"github.com/optimode/mailcheck/ratelimit"
)

var version = "dev"

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	configureLogger(logger, cfg)
	cfg.Log(logger)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     "mailcheck@" + version,
		}); err != nil {
			logger.WithError(err).Error("sentry initialization failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	var (
		store  ratelimit.Store
		health server.Pinger
	)
	if cfg.Redis.Enabled {
		redisStore := ratelimit.NewRedisStore(ratelimit.NewRedisClient(ratelimit.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
		defer func() { _ = redisStore.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisStore.Ping(ctx); err != nil {
			// The limiter fails closed until Redis is reachable.
			logger.WithError(err).Warn("redis not reachable at startup")
		}
		cancel()
		store, health = redisStore, redisStore
	} else {
		logger.Warn("redis disabled, rate limits are per process")
		store = ratelimit.NewMemoryStore()
	}

	verifier := mailcheck.New().
		WithLogger(logger).
		WithProbe(mailcheck.ProbeOptions{
			HeloDomain: cfg.Verify.HeloDomain,
			MailFrom:   cfg.Verify.MailFrom,
		})

	srv := server.New(server.Config{
		Version:          version,
		VerifyLimit:      cfg.RateLimit.VerifyMax,
		BatchLimit:       cfg.RateLimit.BatchMax,
		Window:           cfg.RateLimit.Window,
		BatchMaxSize:     cfg.Verify.BatchMaxSize,
		BatchConcurrency: cfg.Verify.BatchConcurrency,
		EnableSMTP:       cfg.Verify.EnableSMTP,
		DNSTimeout:       cfg.Verify.DNSTimeout,
		SMTPTimeout:      cfg.Verify.SMTPTimeout,
	}, verifier, ratelimit.NewLimiter(store).WithLogger(logger).WithTimeout(cfg.RateLimit.StoreTimeout), logger)
	if health != nil {
		srv.WithHealthCheck(health)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("shutdown failed")
		}
	}()

	logger.WithField("port", cfg.ServerPort).Info("server starting")
	if err := srv.Listen(":" + cfg.ServerPort); err != nil {
		logger.WithError(err).Error("server stopped")
	}
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
