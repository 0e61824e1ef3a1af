package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/optimode/mailcheck/ratelimit"
)

// rateLimit admits at most maxRequests per window and client for scope.
func (s *Server) rateLimit(scope string, maxRequests int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := s.admit(c, scope, maxRequests, 1); !ok {
			return err
		}
		return c.Next()
	}
}

// admit charges cost units to the client's window for scope and sets the
// X-RateLimit-* headers. When it returns false the 429 has been written
// and err is the result of writing it. The limiter denies when the counter
// store is down, so that also ends here.
func (s *Server) admit(c *fiber.Ctx, scope string, maxRequests, cost int) (bool, error) {
	identity := ratelimit.ClientIdentity(func(name string) string { return c.Get(name) })
	d := s.limiter.CheckN(c.UserContext(), ratelimit.Key(scope, identity), cost, maxRequests, s.cfg.Window)

	for k, v := range d.Headers() {
		c.Set(k, v)
	}
	if d.Allowed {
		return true, nil
	}

	s.logEvent("rate_limit_hit", map[string]interface{}{
		"scope":    scope,
		"client":   identity,
		"cost":     cost,
		"endpoint": c.Path(),
	})
	return false, c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":      "Too many requests. Please wait before trying again.",
		"retryAfter": d.RetryAfter(),
	})
}
