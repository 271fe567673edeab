// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veribank/veribank/internal/auth"
	"github.com/veribank/veribank/internal/platform/constants"
)

const guardTestWindow = 15 * time.Minute

func newTestGuard(t *testing.T) (*auth.RedisAttemptGuard, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return auth.NewAttemptGuard(client, guardTestWindow), server
}

func guardCounterKey(identifier string) string {
	return constants.RedisPrefixLoginAttempts + auth.GuardKey(identifier)
}

/*
TestRedisAttemptGuard_CountsAndResets verifies the basic counter lifecycle:
failures accumulate, Reset returns the key to clean, and a clean key counts
as zero.
*/
func TestRedisAttemptGuard_CountsAndResets(t *testing.T) {
	guard, _ := newTestGuard(t)
	ctx := context.Background()
	key := auth.GuardKey("ada@example.com")

	count, err := guard.Count(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for i := 0; i < 3; i++ {
		require.NoError(t, guard.RecordFailure(ctx, key))
	}

	count, err = guard.Count(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, guard.Reset(ctx, key))

	count, err = guard.Count(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

/*
TestRedisAttemptGuard_CounterAlwaysCarriesWindow verifies that a failure
counter can never exist without a TTL. The first failure of a streak arms the
window in the same pipeline as the increment, and later failures leave the
running window untouched rather than extending it.
*/
func TestRedisAttemptGuard_CounterAlwaysCarriesWindow(t *testing.T) {
	guard, server := newTestGuard(t)
	ctx := context.Background()
	key := auth.GuardKey("ada@example.com")
	counterKey := guardCounterKey("ada@example.com")

	require.NoError(t, guard.RecordFailure(ctx, key))
	assert.Equal(t, guardTestWindow, server.TTL(counterKey))

	// Later failures must not restart the window.
	server.FastForward(5 * time.Minute)
	require.NoError(t, guard.RecordFailure(ctx, key))
	assert.Equal(t, guardTestWindow-5*time.Minute, server.TTL(counterKey))
}

/*
TestRedisAttemptGuard_RearmsLostWindow verifies recovery from a counter that
has lost its TTL (for example a crash after the key was created by an older
non-atomic write path). The next failure re-arms the window, so the counter
expires instead of locking the account forever.
*/
func TestRedisAttemptGuard_RearmsLostWindow(t *testing.T) {
	guard, server := newTestGuard(t)
	ctx := context.Background()
	key := auth.GuardKey("ada@example.com")
	counterKey := guardCounterKey("ada@example.com")

	// A persistent counter above any sane threshold, with no TTL.
	require.NoError(t, server.Set(counterKey, "99"))
	require.Equal(t, time.Duration(0), server.TTL(counterKey))

	require.NoError(t, guard.RecordFailure(ctx, key))

	count, err := guard.Count(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 100, count)
	assert.Equal(t, guardTestWindow, server.TTL(counterKey))

	// Once the re-armed window elapses, the account unlocks on its own.
	server.FastForward(guardTestWindow + time.Second)
	count, err = guard.Count(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

/*
TestRedisAttemptGuard_WindowSelfClears verifies that a full streak evaporates
once the window that started at the first failure elapses.
*/
func TestRedisAttemptGuard_WindowSelfClears(t *testing.T) {
	guard, server := newTestGuard(t)
	ctx := context.Background()
	key := auth.GuardKey("ada@example.com")

	for i := 0; i < 5; i++ {
		require.NoError(t, guard.RecordFailure(ctx, key))
	}

	server.FastForward(guardTestWindow + time.Second)

	count, err := guard.Count(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

/*
TestRedisAttemptGuard_OutageSurfacesAsUnavailable verifies that a dead cache
yields an infrastructure error, which the login path treats as "not locked".
*/
func TestRedisAttemptGuard_OutageSurfacesAsUnavailable(t *testing.T) {
	guard, server := newTestGuard(t)
	ctx := context.Background()
	key := auth.GuardKey("ada@example.com")

	server.Close()

	assert.Error(t, guard.RecordFailure(ctx, key))
	_, err := guard.Count(ctx, key)
	assert.Error(t, err)
}
