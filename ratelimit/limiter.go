// Package ratelimit implements a fixed-window request limiter on top of a
// shared atomic increment-with-expiry primitive.
//
// The limiter fails closed: when the counter store errors, requests are
// denied.
package ratelimit

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Store is the shared counter primitive. IncrWithExpiry atomically
// increments key and, when the increment created it, sets it to expire
// after ttl. isNew reports whether this call opened the window.
// IncrByWithExpiry does the same with a step of n.
type Store interface {
	IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (count int64, isNew bool, err error)
	IncrByWithExpiry(ctx context.Context, key string, n int64, ttl time.Duration) (count int64, isNew bool, err error)
}

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time

	decidedAt time.Time
}

// DefaultStoreTimeout bounds a single store round-trip.
const DefaultStoreTimeout = 500 * time.Millisecond

// Limiter gates requests per key with a fixed window.
type Limiter struct {
	store   Store
	logger  logrus.FieldLogger
	timeout time.Duration
	now     func() time.Time
}

func NewLimiter(store Store) *Limiter {
	return &Limiter{
		store:   store,
		logger:  logrus.StandardLogger(),
		timeout: DefaultStoreTimeout,
		now:     time.Now,
	}
}

// NewLimiterWithClock is a test-oriented constructor that overrides the clock.
func NewLimiterWithClock(store Store, now func() time.Time) *Limiter {
	l := NewLimiter(store)
	l.now = now
	return l
}

// WithTimeout sets how long Check waits for the store. A store that does
// not answer in time denies the request. A timeout <= 0 keeps the default.
func (l *Limiter) WithTimeout(timeout time.Duration) *Limiter {
	if timeout > 0 {
		l.timeout = timeout
	}
	return l
}

// WithLogger sets the logger used for fail-closed decisions.
func (l *Limiter) WithLogger(logger logrus.FieldLogger) *Limiter {
	l.logger = logger
	return l
}

// Check counts one request against key and reports whether it is admitted.
// The (maxRequests+1)-th request within a window is denied.
func (l *Limiter) Check(ctx context.Context, key string, maxRequests int, window time.Duration) Decision {
	return l.CheckN(ctx, key, 1, maxRequests, window)
}

// CheckN charges cost units against key at once, e.g. one per address of a
// batch. It is denied when the window total would exceed maxRequests; the
// units of a denied call are still counted.
func (l *Limiter) CheckN(ctx context.Context, key string, cost, maxRequests int, window time.Duration) Decision {
	if cost < 1 {
		cost = 1
	}
	now := l.now()
	resetAt := now.Add(window)
	denied := Decision{Allowed: false, Limit: maxRequests, Remaining: 0, ResetAt: resetAt, decidedAt: now}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	count, _, err := l.store.IncrByWithExpiry(ctx, key, int64(cost), window)
	if err != nil {
		l.logger.WithFields(logrus.Fields{
			"key":   key,
			"error": err,
		}).Warn("rate limit store unavailable, denying request")
		return denied
	}

	if count > int64(maxRequests) {
		return denied
	}
	return Decision{
		Allowed:   true,
		Limit:     maxRequests,
		Remaining: maxRequests - int(count),
		ResetAt:   resetAt,
		decidedAt: now,
	}
}

// Key builds the store key for an endpoint scope and client identity.
func Key(scope, identity string) string {
	return "ratelimit:" + scope + ":" + identity
}

// Headers returns the client-visible rate limit headers for d.
// Retry-After is only set on denied decisions.
func (d Decision) Headers() map[string]string {
	h := map[string]string{
		"X-RateLimit-Limit":     strconv.Itoa(d.Limit),
		"X-RateLimit-Remaining": strconv.Itoa(d.Remaining),
		"X-RateLimit-Reset":     strconv.FormatInt(d.ResetAt.Unix(), 10),
	}
	if !d.Allowed {
		h["Retry-After"] = strconv.Itoa(d.RetryAfter())
	}
	return h
}

// RetryAfter is the number of whole seconds from the decision until the
// window resets, never less than one.
func (d Decision) RetryAfter() int {
	from := d.decidedAt
	if from.IsZero() {
		from = time.Now()
	}
	secs := int(math.Ceil(d.ResetAt.Sub(from).Seconds()))
	return max(secs, 1)
}
