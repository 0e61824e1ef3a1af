package dnscache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailcheck/internal/dnscache"
	"github.com/optimode/mailcheck/types"
)

// mockResolver tracks how many times it was called.
type mockResolver struct {
	result types.DNSCheck
	delay  time.Duration
	calls  atomic.Int64
}

func (m *mockResolver) resolve(_ context.Context, _ string) types.DNSCheck {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.result
}

func withMX() types.DNSCheck {
	mx := types.MXRecord{Exchange: "mx.example.com", Priority: 10}
	return types.DNSCheck{
		Valid:        true,
		DomainExists: true,
		HasMX:        true,
		MXRecords:    []types.MXRecord{mx, {Exchange: "mx2.example.com", Priority: 20}},
		PreferredMX:  &mx,
	}
}

func TestCache_BasicCaching(t *testing.T) {
	r := &mockResolver{result: withMX()}
	c := dnscache.New(time.Minute)

	// First call: actual lookup
	res := c.Resolve(context.Background(), "example.com", r.resolve)
	assert.True(t, res.HasMX)
	assert.Equal(t, int64(1), r.calls.Load())

	// Second call: cached, keys are case-insensitive
	res = c.Resolve(context.Background(), "EXAMPLE.com", r.resolve)
	assert.True(t, res.HasMX)
	assert.Equal(t, int64(1), r.calls.Load())
}

func TestCache_DifferentDomains(t *testing.T) {
	r := &mockResolver{result: withMX()}
	c := dnscache.New(time.Minute)

	_ = c.Resolve(context.Background(), "a.com", r.resolve)
	_ = c.Resolve(context.Background(), "b.com", r.resolve)
	assert.Equal(t, int64(2), r.calls.Load())
	assert.Equal(t, 2, c.Len())
}

func TestCache_TTLExpiry(t *testing.T) {
	r := &mockResolver{result: withMX()}
	c := dnscache.New(50*time.Millisecond) // short TTL

	_ = c.Resolve(context.Background(), "example.com", r.resolve)
	assert.Equal(t, int64(1), r.calls.Load())

	time.Sleep(100 * time.Millisecond) // wait for expiry

	_ = c.Resolve(context.Background(), "example.com", r.resolve)
	assert.Equal(t, int64(2), r.calls.Load()) // refreshed
}

func TestCache_Singleflight(t *testing.T) {
	r := &mockResolver{result: withMX(), delay: 20 * time.Millisecond}
	c := dnscache.New(time.Minute)

	// Launch many concurrent lookups for the same domain
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := c.Resolve(context.Background(), "example.com", r.resolve)
			assert.Len(t, res.MXRecords, 2)
		}()
	}
	wg.Wait()

	// Should have only performed 1 actual lookup
	assert.Equal(t, int64(1), r.calls.Load())
}

func TestCache_CachesNotFound(t *testing.T) {
	r := &mockResolver{result: types.DNSCheck{Valid: false, ErrorKind: types.DNSErrorNotFound}}
	c := dnscache.New(time.Minute)

	_ = c.Resolve(context.Background(), "bad.com", r.resolve)
	res := c.Resolve(context.Background(), "bad.com", r.resolve)
	assert.False(t, res.Valid)
	assert.Equal(t, int64(1), r.calls.Load()) // not found was cached
}

func TestCache_SkipsTransientFailures(t *testing.T) {
	for _, kind := range []types.DNSErrorKind{types.DNSErrorTimeout, types.DNSErrorServerFailure} {
		t.Run(string(kind), func(t *testing.T) {
			r := &mockResolver{result: types.DNSCheck{Valid: false, ErrorKind: kind}}
			c := dnscache.New(time.Minute)

			_ = c.Resolve(context.Background(), "flaky.com", r.resolve)
			res := c.Resolve(context.Background(), "flaky.com", r.resolve)
			assert.Equal(t, kind, res.ErrorKind)
			assert.Equal(t, int64(2), r.calls.Load())
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestCache_ReturnsCopy(t *testing.T) {
	r := &mockResolver{result: withMX()}
	c := dnscache.New(time.Minute)

	res1 := c.Resolve(context.Background(), "example.com", r.resolve)
	res2 := c.Resolve(context.Background(), "example.com", r.resolve)

	// Mutating one copy should not affect the other
	res1.MXRecords[0].Exchange = "modified"
	res1.PreferredMX.Exchange = "modified"
	assert.Equal(t, "mx.example.com", res2.MXRecords[0].Exchange)
	assert.Equal(t, "mx.example.com", res2.PreferredMX.Exchange)
}

func TestCache_PanicReleasesWaiters(t *testing.T) {
	c := dnscache.New(time.Minute)
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() { _ = recover() }()
		_ = c.Resolve(context.Background(), "boom.com", func(context.Context, string) types.DNSCheck {
			close(started)
			time.Sleep(20 * time.Millisecond)
			panic("resolver exploded")
		})
	}()

	<-started
	res := c.Resolve(context.Background(), "boom.com", func(context.Context, string) types.DNSCheck {
		return withMX()
	})
	wg.Wait()

	assert.False(t, res.Valid)
	assert.Equal(t, types.DNSErrorServerFailure, res.ErrorKind)
	assert.Equal(t, 0, c.Len())
}
