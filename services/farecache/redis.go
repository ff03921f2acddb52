package farecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skybook/models"

	"github.com/go-redis/redis/v8"
)

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisCache returns a Cache backed by Redis. Entries get the TTL both as
// a Redis expiry and as a CreatedAt stamp checked at read time.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl, now: time.Now}
}

func fareKey(fingerprint string) string { return "fare:" + fingerprint }
func traceKey(traceID string) string    { return "trace:" + traceID }

func (c *redisCache) Put(ctx context.Context, fingerprint string, offers []models.Offer, traceID string) error {
	entry := Entry{
		Fingerprint: fingerprint,
		TraceID:     traceID,
		Offers:      offers,
		CreatedAt:   c.now(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal fare cache entry: %w", err)
	}
	if err := c.client.Set(ctx, fareKey(fingerprint), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store fare cache entry: %w", err)
	}
	// Secondary index so follow-up calls can resolve by trace id alone.
	if err := c.client.Set(ctx, traceKey(traceID), fingerprint, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to index fare cache trace: %w", err)
	}
	return nil
}

func (c *redisCache) Get(ctx context.Context, fingerprint string) (*Entry, error) {
	data, err := c.client.Get(ctx, fareKey(fingerprint)).Result()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fare cache: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to parse fare cache entry: %w", err)
	}
	// Redis expiry is authoritative, but the stamp is still checked so a
	// just-expired entry is never served.
	if c.now().After(entry.CreatedAt.Add(c.ttl)) {
		return nil, ErrMiss
	}
	return &entry, nil
}

func (c *redisCache) Resolve(ctx context.Context, traceID string, resultIndex int) (*models.Offer, error) {
	fingerprint, err := c.client.Get(ctx, traceKey(traceID)).Result()
	if err == redis.Nil {
		return nil, ErrExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fare cache trace: %w", err)
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
