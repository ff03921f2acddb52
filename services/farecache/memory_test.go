package farecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybook/models"
)

func testOffers() []models.Offer {
	return []models.Offer{
		{Airline: "Air India", FlightNumber: "AI-123", Total: 5500, Currency: "INR", ResultIndex: 0},
		{Airline: "IndiGo", FlightNumber: "6E-456", Total: 4800, Currency: "INR", IsLCC: true, ResultIndex: 1},
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(15 * time.Minute)

	params := models.SearchParams{Origin: "DEL", Destination: "BOM", Date: "2024-01-16", Adults: 1, Cabin: models.CabinEconomy}
	fp := Fingerprint(params)

	_, err := cache.Get(ctx, fp)
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, cache.Put(ctx, fp, testOffers(), "trace-1"))

	entry, err := cache.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, "trace-1", entry.TraceID)
	assert.Len(t, entry.Offers, 2)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cache := NewMemoryCacheWithClock(15*time.Minute, clock)

	fp := Fingerprint(models.SearchParams{Origin: "DEL", Destination: "BOM", Date: "2024-01-16", Adults: 1})
	require.NoError(t, cache.Put(ctx, fp, testOffers(), "trace-1"))

	// Inside the window the entry is equivalent to a fresh search.
	now = now.Add(14 * time.Minute)
	_, err := cache.Get(ctx, fp)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = cache.Get(ctx, fp)
	assert.ErrorIs(t, err, ErrMiss)

	_, err = cache.Resolve(ctx, "trace-1", 0)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestMemoryCacheResolve(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(15 * time.Minute)
	fp := Fingerprint(models.SearchParams{Origin: "DEL", Destination: "BOM", Date: "2024-01-16", Adults: 1})
	require.NoError(t, cache.Put(ctx, fp, testOffers(), "trace-1"))

	offer, err := cache.Resolve(ctx, "trace-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "6E-456", offer.FlightNumber)

	_, err = cache.Resolve(ctx, "trace-1", 5)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = cache.Resolve(ctx, "trace-1", -1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = cache.Resolve(ctx, "no-such-trace", 0)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestFingerprintDistinguishesSearches(t *testing.T) {
	base := models.SearchParams{Origin: "DEL", Destination: "BOM", Date: "2024-01-16", Adults: 1, Cabin: models.CabinEconomy}

	other := base
	other.Adults = 2
	assert.NotEqual(t, Fingerprint(base), Fingerprint(other))

	swapped := base
	swapped.Origin, swapped.Destination = base.Destination, base.Origin
	assert.NotEqual(t, Fingerprint(base), Fingerprint(swapped))

	assert.Equal(t, Fingerprint(base), Fingerprint(base))
}
