package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginThrottle_RecordAndCount(t *testing.T) {
	_, client := setupTestRedis(t)
	throttle := NewLoginThrottle(client)
	ctx := context.Background()

	count, err := throttle.Failures(ctx, "h.lindqvist")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for i := 1; i <= 3; i++ {
		count, err = throttle.RecordFailure(ctx, "h.lindqvist", 15*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	count, err = throttle.Failures(ctx, "h.lindqvist")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestLoginThrottle_WindowExpiry(t *testing.T) {
	m, client := setupTestRedis(t)
	throttle := NewLoginThrottle(client)
	ctx := context.Background()

	_, err := throttle.RecordFailure(ctx, "h.lindqvist", time.Minute)
	require.NoError(t, err)

	m.FastForward(2 * time.Minute)

	count, err := throttle.Failures(ctx, "h.lindqvist")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLoginThrottle_WindowRunsFromFirstFailure(t *testing.T) {
	m, client := setupTestRedis(t)
	throttle := NewLoginThrottle(client)
	ctx := context.Background()

	_, err := throttle.RecordFailure(ctx, "h.lindqvist", time.Minute)
	require.NoError(t, err)

	// Later failures must not extend the window.
	m.FastForward(45 * time.Second)
	_, err = throttle.RecordFailure(ctx, "h.lindqvist", time.Minute)
	require.NoError(t, err)

	m.FastForward(30 * time.Second)
	count, err := throttle.Failures(ctx, "h.lindqvist")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLoginThrottle_Reset(t *testing.T) {
	_, client := setupTestRedis(t)
	throttle := NewLoginThrottle(client)
	ctx := context.Background()

	_, err := throttle.RecordFailure(ctx, "h.lindqvist", time.Minute)
	require.NoError(t, err)

	require.NoError(t, throttle.Reset(ctx, "h.lindqvist"))

	count, err := throttle.Failures(ctx, "h.lindqvist")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Other accounts are untracked independently.
	assert.NoError(t, throttle.Reset(ctx, "someone.else"))
}
