// Package farecache stores ranked flight search results for a bounded window
// so repeated identical searches do not hit the inventory provider twice.
package farecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skybook/models"
)

var (
	// ErrMiss means no entry exists for the fingerprint (or it expired;
	// expired entries are never served).
	ErrMiss = errors.New("fare cache miss")
	// ErrNotFound means the trace id or result index does not resolve.
	ErrNotFound = errors.New("offer not found")
	// ErrExpired means the entry exists but its TTL elapsed.
	ErrExpired = errors.New("offers expired")
)

// Entry is one cached search result. Immutable once written.
type Entry struct {
	Fingerprint string         `json:"fingerprint"`
	TraceID     string         `json:"traceId"`
	Offers      []models.Offer `json:"offers"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Cache is the fare cache contract. Writes on the same fingerprint are
// last-writer-wins; entries are equivalent within the TTL window.
type Cache interface {
	Put(ctx context.Context, fingerprint string, offers []models.Offer, traceID string) error
	Get(ctx context.Context, fingerprint string) (*Entry, error)
	Resolve(ctx context.Context, traceID string, resultIndex int) (*models.Offer, error)
}

// Fingerprint builds the deterministic cache key for a search. Two logically
// identical searches collapse to one entry within the TTL window.
func Fingerprint(p models.SearchParams) string {
	return fmt.Sprintf("%s:%s:%s:%d:%d:%d:%s",
		p.Origin, p.Destination, p.Date, p.Adults, p.Children, p.Infants, p.Cabin)
}
