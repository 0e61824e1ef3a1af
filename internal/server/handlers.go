package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/optimode/mailcheck"
)

// optionsRequest mirrors mailcheck.Options on the wire. Durations are in
// milliseconds; zero or absent means the server default.
type optionsRequest struct {
	EnableSMTP      *bool `json:"enableSmtp"`
	DNSTimeout      int   `json:"dnsTimeout" validate:"min=0,max=60000"`
	SMTPTimeout     int   `json:"smtpTimeout" validate:"min=0,max=120000"`
	SkipDisposable  bool  `json:"skipDisposable"`
	SkipRole        bool  `json:"skipRole"`
	SkipTypo        bool  `json:"skipTypo"`
	AllowImplicitMX bool  `json:"allowImplicitMx"`
}

type verifyRequest struct {
	Email   string         `json:"email" validate:"required,max=320"`
	Options optionsRequest `json:"options"`
}

type batchRequest struct {
	Emails      []string       `json:"emails" validate:"required,min=1,dive,max=320"`
	Options     optionsRequest `json:"options"`
	Concurrency int            `json:"concurrency" validate:"min=0,max=50"`
}

type batchResponse struct {
	Results []mailcheck.Result      `json:"results"`
	Total   int                     `json:"total"`
	Summary map[mailcheck.State]int `json:"summary"`
}

func (s *Server) options(r optionsRequest) mailcheck.Options {
	o := mailcheck.Options{
		EnableSMTP:      s.cfg.EnableSMTP,
		DNSTimeout:      s.cfg.DNSTimeout,
		SMTPTimeout:     s.cfg.SMTPTimeout,
		SkipDisposable:  r.SkipDisposable,
		SkipRole:        r.SkipRole,
		SkipTypo:        r.SkipTypo,
		AllowImplicitMX: r.AllowImplicitMX,
	}
	if r.EnableSMTP != nil {
		o.EnableSMTP = *r.EnableSMTP
	}
	if r.DNSTimeout > 0 {
		o.DNSTimeout = time.Duration(r.DNSTimeout) * time.Millisecond
	}
	if r.SMTPTimeout > 0 {
		o.SMTPTimeout = time.Duration(r.SMTPTimeout) * time.Millisecond
	}
	return o
}

func (s *Server) healthHandler(c *fiber.Ctx) error {
	if s.health != nil {
		if err := s.health.Ping(c.UserContext()); err != nil {
			s.logger.WithField("error", err).Warn("health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "degraded",
				"version": s.cfg.Version,
			})
		}
	}
	return c.JSON(fiber.Map{
		"status":  "running",
		"version": s.cfg.Version,
	})
}

// verifyHandler verifies one address. Heuristic outcomes, including bad
// syntax, are a 200 with the verdict in the body.
func (s *Server) verifyHandler(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := s.verifier.Verify(c.UserContext(), req.Email, s.options(req.Options))
	if err != nil {
		s.logError("verification_failed", err, errorContext(err, map[string]interface{}{
			"email": req.Email,
		}))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Verification failed"})
	}
	return c.JSON(res)
}

func (s *Server) batchHandler(c *fiber.Ctx) error {
	var req batchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(req.Emails) > s.cfg.BatchMaxSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error":   "Too many addresses in one batch",
			"maxSize": s.cfg.BatchMaxSize,
		})
	}

	if ok, err := s.admit(c, "batch", s.cfg.BatchLimit, len(req.Emails)); !ok {
		return err
	}

	concurrency := req.Concurrency
	if concurrency == 0 {
		concurrency = s.cfg.BatchConcurrency
	}

	results, err := s.verifier.VerifyMany(c.UserContext(), req.Emails, concurrency, s.options(req.Options))
	if err != nil {
		s.logError("batch_verification_failed", err, errorContext(err, map[string]interface{}{
			"batch_size": len(req.Emails),
		}))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Batch verification failed"})
	}

	summary := make(map[mailcheck.State]int)
	for _, r := range results {
		summary[r.State]++
	}
	return c.JSON(batchResponse{Results: results, Total: len(results), Summary: summary})
}

// errorContext adds the failing stage of an *InternalError to ctx.
func errorContext(err error, ctx map[string]interface{}) map[string]interface{} {
	var ierr *mailcheck.InternalError
	if errors.As(err, &ierr) {
		ctx["stage"] = ierr.Stage
	}
	return ctx
}
