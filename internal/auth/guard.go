// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veribank/veribank/internal/platform/apperr"
	"github.com/veribank/veribank/internal/platform/constants"
)

// # Login Attempt Guard

// GuardKey derives the counter key from an account identifier. Lookups are
// case-insensitive so "A@x.com" and "a@x.com" share one counter.
func GuardKey(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// RedisAttemptGuard implements AttemptGuard on a Redis counter with a TTL.
//
// # State Machine
//
// Each key moves Clean -> Counting(n) on failures, reaching Locked when the
// count hits the configured threshold, and back to Clean when the TTL elapses
// or a successful login resets it. The window starts at the FIRST failure and
// is not extended by later ones, so a lockout always self-clears one window
// after the streak began.
type RedisAttemptGuard struct {
	client *redis.Client
	window time.Duration
}

// NewAttemptGuard creates a Redis-backed AttemptGuard with the given lockout window.
func NewAttemptGuard(client *redis.Client, window time.Duration) *RedisAttemptGuard {
	return &RedisAttemptGuard{client: client, window: window}
}

/*
RecordFailure increments the failure counter for a key, starting the lockout
window when this is the first failure of a streak.

The increment and the TTL arming travel in one transactional pipeline.
EXPIRE NX only sets a TTL when the key has none, so later failures do not
extend the window, and a counter that somehow lost its TTL is re-armed on
the next failure instead of counting forever.

Parameters:
  - context: context.Context
  - key: string (Derived via GuardKey)

Returns:
  - error: Infrastructure failures
*/
func (guard *RedisAttemptGuard) RecordFailure(context context.Context, key string) error {

	// Use constants for key prefix
	counterKey := constants.RedisPrefixLoginAttempts + key

	// Increment the counter and arm the window atomically
	pipeline := guard.client.TxPipeline()
	pipeline.Incr(context, counterKey)
	pipeline.ExpireNX(context, counterKey, guard.window)
	if _, err := pipeline.Exec(context); err != nil {
		return apperr.Unavailable("login attempt guard", err)
	}

	return nil
}

/*
Count returns the current consecutive failure count for a key.

Parameters:
  - context: context.Context
  - key: string (Derived via GuardKey)

Returns:
  - int: Failure count, zero when the key is clean
  - error: Infrastructure failures
*/
func (guard *RedisAttemptGuard) Count(context context.Context, key string) (int, error) {

	// Use constants for key prefix
	counterKey := constants.RedisPrefixLoginAttempts + key

	// Get the counter value
	raw, err := guard.client.Get(context, counterKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, apperr.Unavailable("login attempt guard", err)
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		// Corrupt counter value, treat the key as clean
		return 0, nil
	}

	return count, nil
}

/*
Reset clears the failure counter for a key after a successful login.

Parameters:
  - context: context.Context
  - key: string (Derived via GuardKey)

Returns:
  - error: Infrastructure failures
*/
func (guard *RedisAttemptGuard) Reset(context context.Context, key string) error {

	// Use constants for key prefix
	counterKey := constants.RedisPrefixLoginAttempts + key

	// Delete the counter
	if err := guard.client.Del(context, counterKey).Err(); err != nil {
		return apperr.Unavailable("login attempt guard", err)
	}

	return nil
}
