// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/veribank/veribank/internal/platform/sec"
	"github.com/veribank/veribank/pkg/uuid"
)

// # Token Manager

// Manager orchestrates credential issuance and bulk revocation on top of the
// signing codec and the token store.
//
// # Concurrency
//
// No distributed lock coordinates concurrent IssueFor/RevokeAll calls for the
// same user (simultaneous login from two devices). The last writer wins,
// which is acceptable for the login/refresh use case.
type Manager struct {
	codec      *sec.Codec
	store      TokenStore
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager creates a token Manager with the configured pair of TTLs.
func NewManager(codec *sec.Codec, store TokenStore, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		codec:      codec,
		store:      store,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

/*
IssueFor mints a fresh access/refresh pair for the principal and makes it the
user's only pair.

Description: Signs both tokens, persists the new pair, then clears every
previously stored token owned by the user. The new pair is durably saved
BEFORE the old ones are deleted so a crash between the two steps can leave a
user with two pairs (harmless, cleaned up on the next issuance) but never
with zero.

Parameters:
  - ctx: context.Context
  - principal: sec.Principal (Identity claims to embed)

Returns:
  - *TokenPair: The encoded access and refresh credentials
  - error: Signing or storage failures
*/
func (manager *Manager) IssueFor(ctx context.Context, principal sec.Principal) (*TokenPair, error) {
	previous, err := manager.store.FindAllByUser(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("token_lookup_failed: %w", err)
	}

	accessValue, err := manager.codec.Issue(principal, manager.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("access_token_sign_failed: %w", err)
	}

	refreshValue, err := manager.codec.Issue(principal, manager.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("refresh_token_sign_failed: %w", err)
	}

	now := time.Now()
	pair := []*Token{
		{
			ID:        uuid.Must(),
			Value:     accessValue,
			Kind:      KindAccess,
			UserID:    principal.UserID,
			CreatedAt: now,
		},
		{
			ID:        uuid.Must(),
			Value:     refreshValue,
			Kind:      KindRefresh,
			UserID:    principal.UserID,
			CreatedAt: now,
		},
	}

	if err := manager.store.SaveAll(ctx, pair); err != nil {
		return nil, fmt.Errorf("token_save_failed: %w", err)
	}

	if err := manager.store.DeleteAll(ctx, previous); err != nil {
		return nil, fmt.Errorf("token_cleanup_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessValue,
		RefreshToken: refreshValue,
	}, nil
}

/*
RevokeAll invalidates every valid token the user currently holds.

Description: Flips both lifecycle flags on each valid token and saves them
back, so the rows survive as audit records but can never authenticate again.
A no-op (not an error) when the user holds zero valid tokens; after a
successful return no valid token for the user remains.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - error: Storage failures
*/
func (manager *Manager) RevokeAll(ctx context.Context, userID string) error {
	tokens, err := manager.store.FindValidByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("token_lookup_failed: %w", err)
	}

	if len(tokens) == 0 {
		return nil
	}

	for _, token := range tokens {
		token.Expired = true
		token.Revoked = true
	}

	if err := manager.store.SaveAll(ctx, tokens); err != nil {
		return fmt.Errorf("token_revoke_failed: %w", err)
	}

	return nil
}
