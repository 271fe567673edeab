// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veribank/veribank/internal/auth"
	"github.com/veribank/veribank/internal/platform/sec"
)

func newTestManager(t *testing.T, store auth.TokenStore) *auth.Manager {
	t.Helper()

	codec, err := sec.NewCodec("test-signing-secret", "veribank.io", "veribank-clients")
	require.NoError(t, err)

	return auth.NewManager(codec, store, 15*time.Minute, 7*24*time.Hour)
}

func testPrincipal(userID string) sec.Principal {
	return sec.Principal{
		UserID: userID,
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
		Role:   sec.RoleCustomer,
	}
}

/*
TestManager_IssueFor_CreatesTaggedPair verifies one issuance persists exactly
one access and one refresh token for the user.
*/
func TestManager_IssueFor_CreatesTaggedPair(t *testing.T) {
	store := newMemoryTokenStore()
	manager := newTestManager(t, store)

	pair, err := manager.IssueFor(context.Background(), testPrincipal("user-1"))
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	tokens, err := store.FindAllByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	kinds := map[auth.TokenKind]string{}
	for _, token := range tokens {
		kinds[token.Kind] = token.Value
		assert.True(t, token.Valid())
		assert.Equal(t, "user-1", token.UserID)
	}
	assert.Equal(t, pair.AccessToken, kinds[auth.KindAccess])
	assert.Equal(t, pair.RefreshToken, kinds[auth.KindRefresh])
}

/*
TestManager_IssueFor_ReplacesPreviousPair verifies a second issuance removes
every token from the first, so only the newest pair can authenticate.
*/
func TestManager_IssueFor_ReplacesPreviousPair(t *testing.T) {
	store := newMemoryTokenStore()
	manager := newTestManager(t, store)

	first, err := manager.IssueFor(context.Background(), testPrincipal("user-1"))
	require.NoError(t, err)

	second, err := manager.IssueFor(context.Background(), testPrincipal("user-1"))
	require.NoError(t, err)

	tokens, err := store.FindAllByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	for _, token := range tokens {
		assert.NotEqual(t, first.AccessToken, token.Value)
		assert.NotEqual(t, first.RefreshToken, token.Value)
	}

	values := []string{tokens[0].Value, tokens[1].Value}
	assert.Contains(t, values, second.AccessToken)
	assert.Contains(t, values, second.RefreshToken)
}

/*
TestManager_IssueFor_SavesBeforeDeleting verifies the new pair is durably
saved before the previous tokens are deleted, so a crash between the two
steps can never leave a user with zero tokens.
*/
func TestManager_IssueFor_SavesBeforeDeleting(t *testing.T) {
	store := newMemoryTokenStore()
	manager := newTestManager(t, store)

	_, err := manager.IssueFor(context.Background(), testPrincipal("user-1"))
	require.NoError(t, err)
	_, err = manager.IssueFor(context.Background(), testPrincipal("user-1"))
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(store.ops), 2)
	for i := 1; i < len(store.ops); i++ {
		if store.ops[i] == "deleteAll" {
			assert.Equal(t, "saveAll", store.ops[i-1], "every delete must be preceded by a save")
		}
	}
}

/*
TestManager_IssueFor_DoesNotTouchOtherUsers verifies issuance for one user
leaves another user's tokens intact.
*/
func TestManager_IssueFor_DoesNotTouchOtherUsers(t *testing.T) {
	store := newMemoryTokenStore()
	manager := newTestManager(t, store)

	_, err := manager.IssueFor(context.Background(), testPrincipal("user-1"))
	require.NoError(t, err)
	_, err = manager.IssueFor(context.Background(), testPrincipal("user-2"))
	require.NoError(t, err)

	tokens, err := store.FindAllByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
}

/*
TestManager_RevokeAll verifies revocation is total: no valid token remains,
while the rows survive as audit records with both flags flipped.
*/
func TestManager_RevokeAll(t *testing.T) {
	store := newMemoryTokenStore()
	manager := newTestManager(t, store)

	_, err := manager.IssueFor(context.Background(), testPrincipal("user-1"))
	require.NoError(t, err)

	require.NoError(t, manager.RevokeAll(context.Background(), "user-1"))

	valid, err := store.FindValidByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, valid)

	all, err := store.FindAllByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, token := range all {
		assert.True(t, token.Expired)
		assert.True(t, token.Revoked)
	}
}

/*
TestManager_RevokeAll_NoValidTokens verifies revoking a user with nothing to
revoke is a no-op, not an error.
*/
func TestManager_RevokeAll_NoValidTokens(t *testing.T) {
	store := newMemoryTokenStore()
	manager := newTestManager(t, store)

	assert.NoError(t, manager.RevokeAll(context.Background(), "nobody"))
}
