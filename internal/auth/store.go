// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package auth

import (
	"context"
	"time"
)

// # Storage Contracts

/*
TokenStore is the durable record of every issued token and its lifecycle
flags, keyed by value (point lookups) and by owning user (revocation scans).

Persistence is the single source of truth for "is this token still usable".
Absence is a normal outcome and surfaces as apperr.NotFound; an I/O failure
is an infrastructure fault and must propagate distinctly so outages are
never masked as rejected credentials.

All operations are idempotent at the row level: re-saving a token with the
same id overwrites, never duplicates.
*/
type TokenStore interface {

	// FindByValue resolves an encoded credential string to its stored record.
	FindByValue(ctx context.Context, value string) (*Token, error)

	// FindValidByUser returns only tokens with both lifecycle flags false.
	// Used exclusively by revocation.
	FindValidByUser(ctx context.Context, userID string) ([]*Token, error)

	// FindAllByUser returns every token owned by the user regardless of state.
	FindAllByUser(ctx context.Context, userID string) ([]*Token, error)

	// Save persists a token, overwriting an existing row with the same id.
	Save(ctx context.Context, token *Token) error

	// SaveAll persists a batch of tokens as a single unit.
	SaveAll(ctx context.Context, tokens []*Token) error

	// DeleteAll removes the given tokens. Missing rows are not an error.
	DeleteAll(ctx context.Context, tokens []*Token) error
}

/*
ResetTokenStore holds short-lived password reset tokens in a TTL cache.

Expiry is enforced by the cache itself; Get on an absent or expired token
returns apperr.NotFound.
*/
type ResetTokenStore interface {
	Set(ctx context.Context, token, userID string, ttl time.Duration) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

/*
AttemptGuard tracks consecutive failed logins per account key inside a TTL
window.

The counter is advisory infrastructure state, not durable business state.
Losing it (cache eviction, backend outage) degrades to "not locked", never
to "permanently locked"; callers treat guard errors accordingly.
*/
type AttemptGuard interface {

	// RecordFailure increments the counter, starting the lockout window on
	// the first failure.
	RecordFailure(ctx context.Context, key string) error

	// Count returns the current consecutive failure count, zero when clean.
	Count(ctx context.Context, key string) (int, error)

	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, key string) error
}
