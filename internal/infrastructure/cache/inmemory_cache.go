package cache

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/storefront/backend/internal/application/workcontext"
	"golang.org/x/sync/singleflight"
)

// InMemoryVerdictCache is a process-local cache for computed work context
// verdicts. Suitable for single-instance deployments and tests. Concurrent
// misses for the same key run the compute function once.
type InMemoryVerdictCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
	group   singleflight.Group

	stopOnce sync.Once
	stopCh   chan struct{}
}

type inMemoryEntry struct {
	value     any
	expiresAt time.Time
}

// NewInMemoryVerdictCache creates a new in-memory verdict cache with a
// background janitor that evicts expired entries.
func NewInMemoryVerdictCache() *InMemoryVerdictCache {
	c := &InMemoryVerdictCache{
		entries: make(map[string]inMemoryEntry),
		stopCh:  make(chan struct{}),
	}
	go c.janitor(time.Minute)
	return c
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss.
func (c *InMemoryVerdictCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have populated the key while we waited.
		if v, ok := c.get(key); ok {
			return v, nil
		}
		computed, cerr := compute(ctx)
		if cerr != nil {
			return nil, cerr
		}
		c.set(key, computed, ttl)
		return computed, nil
	})
	return result, err
}

// InvalidateByPattern removes all entries whose key matches the glob pattern.
func (c *InMemoryVerdictCache) InvalidateByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

// Close stops the background janitor
func (c *InMemoryVerdictCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	return nil
}

func (c *InMemoryVerdictCache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (c *InMemoryVerdictCache) set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = inMemoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (c *InMemoryVerdictCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

var _ workcontext.ContextCache = (*InMemoryVerdictCache)(nil)
