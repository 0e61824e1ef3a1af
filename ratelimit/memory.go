package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepEvery = 256

// MemoryStore is a single-process Store. It is only suitable when one
// instance serves all traffic.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	ops      int
	now      func() time.Time
}

type counter struct {
	count   int64
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock is a test-oriented constructor that overrides the clock.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{counters: make(map[string]*counter), now: now}
}

// IncrWithExpiry implements Store.
func (s *MemoryStore) IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, bool, error) {
	return s.IncrByWithExpiry(ctx, key, 1, ttl)
}

// IncrByWithExpiry implements Store.
func (s *MemoryStore) IncrByWithExpiry(_ context.Context, key string, n int64, ttl time.Duration) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.ops++
	if s.ops%sweepEvery == 0 {
		for k, c := range s.counters {
			if !now.Before(c.expires) {
				delete(s.counters, k)
			}
		}
	}

	c, ok := s.counters[key]
	if !ok || !now.Before(c.expires) {
		s.counters[key] = &counter{count: n, expires: now.Add(ttl)}
		return n, true, nil
	}
	c.count += n
	return c.count, false, nil
}

// Len returns the number of live and not yet swept counters.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}
