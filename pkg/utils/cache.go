package utils

import (
	"context"
	"sync"
	"time"

	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time // zero means no expiry
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryCache is a process-local interfaces.Cache. Only suitable when a
// single catalogd process runs enrichment.
type InMemoryCache struct {
	entries map[string]*cacheEntry
	mu      sync.RWMutex
	stop    chan struct{}
	once    sync.Once
}

var _ interfaces.Cache = (*InMemoryCache)(nil)

// NewInMemoryCache creates a cache that sweeps expired keys every sweepEvery.
func NewInMemoryCache(sweepEvery time.Duration) *InMemoryCache {
	c := &InMemoryCache{
		entries: make(map[string]*cacheEntry),
		stop:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go c.sweep(sweepEvery)
	}
	return c
}

func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil, interfaces.ErrCacheMiss
	}
	return e.value, nil
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	e := &cacheEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.Get(ctx, key)
	return err == nil, nil
}

// TTL returns the remaining lifetime of key; zero for keys without expiry.
func (c *InMemoryCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	e, ok := c.entries[key]
	if !ok || e.expired(now) {
		return 0, interfaces.ErrCacheMiss
	}
	if e.expiresAt.IsZero() {
		return 0, nil
	}
	return e.expiresAt.Sub(now), nil
}

// Close stops the sweeper goroutine.
func (c *InMemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *InMemoryCache) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for k, e := range c.entries {
				if e.expired(now) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
