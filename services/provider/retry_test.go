package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestRetryTransientUntilSuccess(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), "search", func() error {
		attempts++
		if attempts < 3 {
			return NewTransientError("upstreamTimeout", "provider timed out")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryFatalStopsImmediately(t *testing.T) {
	attempts := 0
	fatal := NewFatalError("badRequest", "invalid trace id")
	err := fastPolicy().Do(context.Background(), "fareQuote", func() error {
		attempts++
		return fatal
	})
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, fatal)
}

func TestRetryExhaustionReturnsLastError(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), "book", func() error {
		attempts++
		return NewTransientError("unavailable", "provider overloaded")
	})
	assert.Equal(t, 3, attempts)
	assert.True(t, IsTransient(err))
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryPolicy{MaxAttempts: 5, BaseBackoff: time.Hour}.Do(ctx, "search", func() error {
		attempts++
		cancel()
		return NewTransientError("upstreamTimeout", "provider timed out")
	})
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(NewTransientError("x", "y")))
	assert.False(t, IsTransient(NewFatalError("x", "y")))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.False(t, IsTransient(ErrOfferExpired))
}
