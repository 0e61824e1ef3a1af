// Package dnscache provides a thread-safe, TTL-based cache for domain
// resolutions with singleflight deduplication for concurrent requests to
// the same domain.
package dnscache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/optimode/mailcheck/types"
)

// ResolveFunc performs an uncached resolution.
type ResolveFunc func(ctx context.Context, domain string) types.DNSCheck

// Cache is a thread-safe resolution cache.
// Concurrent lookups for the same domain are deduplicated:
// only one actual resolution is performed, and all waiters receive the result.
// Transient failures (timeout, server failure) are shared with waiters but
// never stored.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
}

type entry struct {
	result  types.DNSCheck
	expires time.Time
	done    chan struct{} // closed when resolution is complete
}

// New creates a cache with the given TTL.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

// Resolve returns the resolution for domain, calling resolve only when no
// fresh entry exists and no other caller is already resolving it.
func (c *Cache) Resolve(ctx context.Context, domain string, resolve ResolveFunc) types.DNSCheck {
	key := strings.ToLower(domain)
	c.mu.Lock()

	if e, ok := c.entries[key]; ok {
		select {
		case <-e.done:
			// Completed entry - check if still valid
			if time.Now().Before(e.expires) {
				c.mu.Unlock()
				return clone(e.result)
			}
			// Expired, fall through to refresh
		default:
			// Resolution in progress - wait for it
			c.mu.Unlock()
			<-e.done
			return clone(e.result)
		}
	}

	// Start new resolution
	e := &entry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	completed := false
	defer func() {
		if completed {
			return
		}
		// resolve panicked: release waiters and drop the entry, then let
		// the panic continue.
		e.result = types.DNSCheck{
			MXRecords: []types.MXRecord{},
			Error:     "resolution aborted",
			ErrorKind: types.DNSErrorServerFailure,
		}
		c.forget(key, e)
		close(e.done)
	}()

	e.result = resolve(ctx, domain)
	e.expires = time.Now().Add(c.ttl)
	completed = true
	close(e.done)

	if transient(e.result) {
		c.forget(key, e)
	}
	return clone(e.result)
}

func (c *Cache) forget(key string, e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[key] == e {
		delete(c.entries, key)
	}
}

// Len returns the number of entries in the cache (for diagnostics).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// transient reports results that say more about the resolver than about
// the domain. They are never stored, whatever their Valid flag.
func transient(r types.DNSCheck) bool {
	return r.ErrorKind == types.DNSErrorTimeout || r.ErrorKind == types.DNSErrorServerFailure
}

// clone returns a deep copy so callers cannot mutate cached data.
func clone(r types.DNSCheck) types.DNSCheck {
	if r.MXRecords != nil {
		r.MXRecords = append([]types.MXRecord(nil), r.MXRecords...)
		if r.MXRecords == nil {
			r.MXRecords = []types.MXRecord{}
		}
	}
	if r.PreferredMX != nil {
		p := *r.PreferredMX
		r.PreferredMX = &p
	}
	return r
}
