// Package server exposes the verifier over HTTP with fiber.
//
// Routes:
//
//	POST /v1/verify        {"email": "...", "options": {...}}
//	POST /v1/verify/batch  {"emails": [...], "options": {...}, "concurrency": 5}
//	GET  /health
//
// Both verify routes are rate limited per client identity and answer with
// X-RateLimit-* headers; denied requests get 429 and Retry-After. A batch
// is charged one unit per address against the batch limit.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/optimode/mailcheck"
	"github.com/optimode/mailcheck/ratelimit"
)

// Verifier is the part of *mailcheck.Verifier the server calls.
type Verifier interface {
	Verify(ctx context.Context, email string, opts ...mailcheck.Options) (mailcheck.Result, error)
	VerifyMany(ctx context.Context, emails []string, concurrency int, opts ...mailcheck.Options) ([]mailcheck.Result, error)
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Version string

	// VerifyLimit is requests per window; BatchLimit is addresses per
	// window across batch requests.
	VerifyLimit int
	BatchLimit  int
	Window      time.Duration

	BatchMaxSize     int
	BatchConcurrency int

	// Defaults for requests that leave the option unset.
	EnableSMTP  bool
	DNSTimeout  time.Duration
	SMTPTimeout time.Duration
}

type Server struct {
	cfg      Config
	app      *fiber.App
	verifier Verifier
	limiter  *ratelimit.Limiter
	health   Pinger
	logger   logrus.FieldLogger
}

func New(cfg Config, verifier Verifier, limiter *ratelimit.Limiter, logger logrus.FieldLogger) *Server {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.BatchMaxSize <= 0 {
		cfg.BatchMaxSize = 1000
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		cfg:      cfg,
		verifier: verifier,
		limiter:  limiter,
		logger:   logger,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "mailcheck",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.routes()
	return s
}

// WithHealthCheck makes GET /health ping p, e.g. the Redis store.
func (s *Server) WithHealthCheck(p Pinger) *Server {
	s.health = p
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.healthHandler)

	v1 := s.app.Group("/v1")
	v1.Post("/verify", s.rateLimit("verify", s.cfg.VerifyLimit), s.verifyHandler)
	// Charged per address once the body is known.
	v1.Post("/verify/batch", s.batchHandler)
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// handleError answers errors returned by handlers and middleware.
// Anything that is not a *fiber.Error is reported and hidden behind a 500.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	s.logError("unhandled_error", err, map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	})
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
