package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidateIP(t *testing.T) {
	limiter := newFallbackLimiter(Config{
		IPLimitPerMin:     5,
		ShareLimitPerHour: 5,
		BurstMultiplier:   1,
	})
	defer limiter.Close()

	ctx := context.Background()
	ip := "192.0.2.1"

	for i := 0; i < 5; i++ {
		_, err := limiter.AllowIP(ctx, ip)
		require.NoError(t, err)
	}

	result, err := limiter.AllowIP(ctx, ip)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	err = limiter.InvalidateIP(ctx, ip)
	require.NoError(t, err)

	// A fresh bucket is created on the next check.
	result, err = limiter.AllowIP(ctx, ip)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestInvalidateIPCoversShareBucket(t *testing.T) {
	limiter := newFallbackLimiter(Config{
		IPLimitPerMin:     5,
		ShareLimitPerHour: 5,
		BurstMultiplier:   1,
	})
	defer limiter.Close()

	ctx := context.Background()
	ip := "192.0.2.2"

	for i := 0; i < 5; i++ {
		_, err := limiter.AllowShare(ctx, ip)
		require.NoError(t, err)
	}

	result, err := limiter.AllowShare(ctx, ip)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	err = limiter.InvalidateIP(ctx, ip)
	require.NoError(t, err)

	result, err = limiter.AllowShare(ctx, ip)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestInvalidateIPLeavesOtherAddresses(t *testing.T) {
	limiter := newFallbackLimiter(Config{
		IPLimitPerMin:     5,
		ShareLimitPerHour: 5,
		BurstMultiplier:   1,
	})
	defer limiter.Close()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := limiter.AllowIP(ctx, "192.0.2.3")
		require.NoError(t, err)
	}

	err := limiter.InvalidateIP(ctx, "192.0.2.99")
	require.NoError(t, err)

	// The exhausted address stays exhausted.
	result, err := limiter.AllowIP(ctx, "192.0.2.3")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
}

func TestInvalidateAll(t *testing.T) {
	limiter := newFallbackLimiter(Config{
		IPLimitPerMin:     5,
		ShareLimitPerHour: 5,
		BurstMultiplier:   1,
	})
	defer limiter.Close()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := limiter.AllowIP(ctx, "192.0.2.4")
		require.NoError(t, err)
		_, err = limiter.AllowShare(ctx, "192.0.2.5")
		require.NoError(t, err)
	}

	err := limiter.InvalidateAll(ctx)
	require.NoError(t, err)

	stats := limiter.GetStats()
	assert.Equal(t, 0, stats["fallback_limiters"].(int))

	result, err := limiter.AllowIP(ctx, "192.0.2.4")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
