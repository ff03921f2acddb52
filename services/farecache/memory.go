package farecache

import (
	"context"
	"sync"
	"time"

	"skybook/models"
)

type memoryCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]*Entry
	traces  map[string]string
}

// NewMemoryCache returns an in-process Cache with the same lazy-expiry
// semantics as the Redis one. Used in tests and single-node setups.
func NewMemoryCache(ttl time.Duration) Cache {
	return newMemoryCache(ttl, time.Now)
}

// NewMemoryCacheWithClock is NewMemoryCache with an injectable clock.
func NewMemoryCacheWithClock(ttl time.Duration, now func() time.Time) Cache {
	return newMemoryCache(ttl, now)
}

func newMemoryCache(ttl time.Duration, now func() time.Time) *memoryCache {
	return &memoryCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]*Entry),
		traces:  make(map[string]string),
	}
}

func (c *memoryCache) Put(ctx context.Context, fingerprint string, offers []models.Offer, traceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = &Entry{
		Fingerprint: fingerprint,
		TraceID:     traceID,
		Offers:      offers,
		CreatedAt:   c.now(),
	}
	c.traces[traceID] = fingerprint
	return nil
}

func (c *memoryCache) Get(ctx context.Context, fingerprint string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[fingerprint]
	if !ok {
		return nil, ErrMiss
	}
	if c.now().After(entry.CreatedAt.Add(c.ttl)) {
		return nil, ErrMiss
	}
	return entry, nil
}

func (c *memoryCache) Resolve(ctx context.Context, traceID string, resultIndex int) (*models.Offer, error) {
	c.mu.RLock()
	fingerprint, ok := c.traces[traceID]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrExpired
	}
	entry, err := c.Get(ctx, fingerprint)
	if err == ErrMiss {
		return nil, ErrExpired
	}
	if err != nil {
		return nil, err
	}
	if resultIndex < 0 || resultIndex >= len(entry.Offers) {
		return nil, ErrNotFound
	}
	offer := entry.Offers[resultIndex]
	return &offer, nil
}
