// Package infra provides shared infrastructure components used across
// the application: caching, memoization, rate limiting, HTTP and logging.
package infra

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// --- TTL cache ---

// CacheEntry holds a cached value with expiration.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory cache with TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	ttl     time.Duration
}

// NewCache creates a new cache with the given default TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
	}
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = CacheEntry{Value: value, ExpiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Flush removes all entries from the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// --- Memo ---

// Memo remembers the result of a keyed computation for the lifetime of
// the process. Concurrent calls for the same key share one execution.
// Errors are returned to every waiting caller but never stored, so the
// next call retries.
//
// The shared execution runs on a context detached from the caller that
// started it, bounded by the memo timeout when one is set. A caller whose
// own context ends stops waiting without failing the others.
type Memo struct {
	mu      sync.RWMutex
	entries map[string]any
	group   singleflight.Group
	timeout time.Duration
}

// NewMemo creates an empty memo table.
func NewMemo() *Memo {
	return &Memo{entries: make(map[string]any)}
}

// SetTimeout bounds every shared execution. Zero means no bound beyond
// whatever fn enforces itself.
func (m *Memo) SetTimeout(d time.Duration) {
	m.mu.Lock()
	m.timeout = d
	m.mu.Unlock()
}

// Do returns the remembered value for key, computing it with fn on a miss.
// hit reports whether the value came from the table.
func (m *Memo) Do(ctx context.Context, key string, fn func(context.Context) (any, error)) (v any, hit bool, err error) {
	m.mu.RLock()
	v, ok := m.entries[key]
	timeout := m.timeout
	m.mu.RUnlock()
	if ok {
		return v, true, nil
	}

	ch := m.group.DoChan(key, func() (any, error) {
		m.mu.RLock()
		cached, ok := m.entries[key]
		m.mu.RUnlock()
		if ok {
			return cached, nil
		}

		fetchCtx := context.WithoutCancel(ctx)
		if timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, timeout)
			defer cancel()
		}
		val, err := fn(fetchCtx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.entries[key] = val
		m.mu.Unlock()
		return val, nil
	})

	select {
	case res := <-ch:
		return res.Val, false, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Len returns the number of remembered entries.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// InvalidatePrefix forgets every key starting with prefix and returns
// how many were removed.
func (m *Memo) InvalidatePrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Flush forgets everything.
func (m *Memo) Flush() {
	m.mu.Lock()
	m.entries = make(map[string]any)
	m.mu.Unlock()
}

// --- Rate limiter ---

// RateLimiter is a token bucket shared by all requests to one upstream.
type RateLimiter struct {
	lim *rate.Limiter
}

// NewRateLimiter allows perSecond requests on average with the given burst.
// A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		return &RateLimiter{lim: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a token is available or context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	return rl.lim.Wait(ctx)
}
