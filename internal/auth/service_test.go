// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veribank/veribank/internal/auth"
	"github.com/veribank/veribank/internal/platform/apperr"
	"github.com/veribank/veribank/internal/platform/sec"
	"github.com/veribank/veribank/internal/users"
)

const (
	testThreshold = 3
	testWindow    = 15 * time.Minute
	testPassword  = "correct-horse-battery"
)

// fakeClock drives the guard's lockout window in tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(d)
}

type testEnv struct {
	service   *auth.Service
	store     *memoryTokenStore
	guard     *memoryGuard
	directory *fakeDirectory
	resets    *memoryResetStore
	clock     *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	codec, err := sec.NewCodec("test-signing-secret", "veribank.io", "veribank-clients")
	require.NoError(t, err)

	clock := &fakeClock{now: time.Now()}
	store := newMemoryTokenStore()
	guard := newMemoryGuard(testWindow, clock.Now)
	directory := newFakeDirectory()
	resets := newMemoryResetStore()
	manager := auth.NewManager(codec, store, 15*time.Minute, 7*24*time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := auth.NewService(directory, store, resets, guard, manager, codec, testThreshold, logger)

	return &testEnv{
		service:   service,
		store:     store,
		guard:     guard,
		directory: directory,
		resets:    resets,
		clock:     clock,
	}
}

// seedUser enrolls an account directly into the fake directory.
func (env *testEnv) seedUser(t *testing.T, id, email string) *users.User {
	t.Helper()

	hash, err := sec.HashPassword(testPassword)
	require.NoError(t, err)

	user := &users.User{
		ID:           id,
		Name:         "Ada Lovelace",
		Email:        email,
		PasswordHash: hash,
		Role:         sec.RoleCustomer,
	}
	require.NoError(t, env.directory.Create(context.Background(), user))
	return user
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()

	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
}

// # Login

/*
TestService_Login_Success verifies a correct credential yields a working pair.
*/
func TestService_Login_Success(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	pair, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	require.NoError(t, err)

	claims, err := env.service.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

/*
TestService_Login_InvalidCredentials verifies unknown accounts and wrong
passwords produce the same generic rejection.
*/
func TestService_Login_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	_, wrongPassword := env.service.Login(context.Background(), "a@x.com", "nope")
	_, unknownAccount := env.service.Login(context.Background(), "ghost@x.com", testPassword)

	assertUnauthorized(t, wrongPassword)
	assertUnauthorized(t, unknownAccount)
	assert.Equal(t, wrongPassword.Error(), unknownAccount.Error())
}

/*
TestService_Login_LockoutAfterThreshold verifies the account locks after the
configured number of consecutive failures, and that a subsequent attempt with
the CORRECT password still gets the lockout response.
*/
func TestService_Login_LockoutAfterThreshold(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "b@x.com")

	for i := 0; i < testThreshold; i++ {
		_, err := env.service.Login(context.Background(), "b@x.com", "wrong")
		assertUnauthorized(t, err)
	}

	_, err := env.service.Login(context.Background(), "b@x.com", testPassword)
	assertUnauthorized(t, err)
	assert.Equal(t, auth.OutcomeLockedOut.Message(), err.Error())
}

/*
TestService_Login_SuccessResetsCounter verifies a success below the threshold
resets the failure streak to zero.
*/
func TestService_Login_SuccessResetsCounter(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	for i := 0; i < testThreshold-1; i++ {
		_, err := env.service.Login(context.Background(), "a@x.com", "wrong")
		assertUnauthorized(t, err)
	}

	_, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	require.NoError(t, err)

	count, err := env.guard.Count(context.Background(), auth.GuardKey("a@x.com"))
	require.NoError(t, err)
	assert.Zero(t, count)
}

/*
TestService_Login_LockoutSelfClears verifies a lockout expires on its own
once the window elapses, with no further calls required.
*/
func TestService_Login_LockoutSelfClears(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	for i := 0; i < testThreshold; i++ {
		_, err := env.service.Login(context.Background(), "a@x.com", "wrong")
		assertUnauthorized(t, err)
	}

	env.clock.Advance(testWindow + time.Second)

	_, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	assert.NoError(t, err)
}

/*
TestService_Login_GuardOutageDegrades verifies a guard backend failure
degrades to "not locked" instead of blocking logins.
*/
func TestService_Login_GuardOutageDegrades(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")
	env.guard.failWith = apperr.Unavailable("login attempt guard", errors.New("connection refused"))

	_, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	assert.NoError(t, err)
}

/*
TestService_Login_KeyIsCaseInsensitive verifies failure streaks share one
counter regardless of identifier casing.
*/
func TestService_Login_KeyIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	_, err := env.service.Login(context.Background(), "a@x.com", "wrong")
	assertUnauthorized(t, err)

	count, err := env.guard.Count(context.Background(), auth.GuardKey("  A@X.COM "))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// # Rotation

/*
TestService_RefreshRotation verifies the full rotation scenario: after a
refresh, the old pair no longer authenticates while the new one does.
*/
func TestService_RefreshRotation(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	pairOne, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	require.NoError(t, err)

	pairTwo, err := env.service.Refresh(context.Background(), pairOne.RefreshToken)
	require.NoError(t, err)

	_, err = env.service.Authenticate(context.Background(), pairOne.AccessToken)
	assertUnauthorized(t, err)

	claims, err := env.service.Authenticate(context.Background(), pairTwo.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

/*
TestService_Refresh_RejectsAccessToken verifies an access token cannot be
exchanged for a new pair.
*/
func TestService_Refresh_RejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	pair, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	require.NoError(t, err)

	_, err = env.service.Refresh(context.Background(), pair.AccessToken)
	assertUnauthorized(t, err)
}

/*
TestService_Refresh_RejectsGarbage verifies malformed refresh tokens are a
uniform 401.
*/
func TestService_Refresh_RejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Refresh(context.Background(), "not-a-token")
	assertUnauthorized(t, err)
}

// # Request Validation

/*
TestService_Authenticate_RevokedTokenRejected verifies store state overrides
signature validity: a cryptographically valid token flagged revoked must
never bind an identity.
*/
func TestService_Authenticate_RevokedTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	pair, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	require.NoError(t, err)

	env.store.flag(pair.AccessToken, false, true)

	_, err = env.service.Authenticate(context.Background(), pair.AccessToken)
	assertUnauthorized(t, err)
}

/*
TestService_Authenticate_UnknownTokenRejected verifies a well-signed token
absent from the store is rejected.
*/
func TestService_Authenticate_UnknownTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	pair, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	require.NoError(t, err)

	// Wipe the store entries while the signature stays valid
	all, err := env.store.FindAllByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.NoError(t, env.store.DeleteAll(context.Background(), all))

	_, err = env.service.Authenticate(context.Background(), pair.AccessToken)
	assertUnauthorized(t, err)
}

/*
TestService_Authenticate_InfraFaultPropagates verifies a store outage is NOT
reported as an authentication failure.
*/
func TestService_Authenticate_InfraFaultPropagates(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	pair, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	require.NoError(t, err)

	env.store.failWith = apperr.Unavailable("token store", errors.New("connection refused"))

	_, err = env.service.Authenticate(context.Background(), pair.AccessToken)
	require.Error(t, err)
	assert.False(t, apperr.IsAuthFailure(err))
}

/*
TestService_Logout_InvalidatesTokens verifies logout revokes the active pair.
*/
func TestService_Logout_InvalidatesTokens(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	pair, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	require.NoError(t, err)

	require.NoError(t, env.service.Logout(context.Background(), "user-1"))

	_, err = env.service.Authenticate(context.Background(), pair.AccessToken)
	assertUnauthorized(t, err)
}

// # Introspection

/*
TestService_Introspection verifies the revocation and expiry probes report
stored state and fail closed on unknown tokens.
*/
func TestService_Introspection(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	pair, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	require.NoError(t, err)

	revoked, err := env.service.IsRevoked(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.False(t, revoked)

	expired, err := env.service.IsExpired(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.False(t, expired)

	require.NoError(t, env.service.Logout(context.Background(), "user-1"))

	revoked, err = env.service.IsRevoked(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	expired, err = env.service.IsExpired(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, expired)

	// Fail-closed on tokens the store has never seen
	revoked, err = env.service.IsRevoked(context.Background(), "unknown-token")
	require.NoError(t, err)
	assert.True(t, revoked)

	expired, err = env.service.IsExpired(context.Background(), "unknown-token")
	require.NoError(t, err)
	assert.True(t, expired)
}

// # Registration

/*
TestService_Register verifies enrollment persists the account and issues a
working first pair.
*/
func TestService_Register(t *testing.T) {
	env := newTestEnv(t)

	user, pair, err := env.service.Register(context.Background(), auth.RegisterInput{
		Name:     "Grace Hopper",
		Email:    "grace@x.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, sec.RoleCustomer, user.Role)

	claims, err := env.service.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

/*
TestService_Register_DuplicateEmail verifies a second enrollment with the
same email is rejected with a conflict.
*/
func TestService_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	_, _, err := env.service.Register(context.Background(), auth.RegisterInput{
		Name:     "Impostor",
		Email:    "a@x.com",
		Password: testPassword,
	})
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
}

// # Password Recovery

/*
TestService_PasswordReset_Flow verifies the full forgot-password round trip:
the new password works, the old one does not, and prior credentials are
revoked.
*/
func TestService_PasswordReset_Flow(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "a@x.com")

	pair, err := env.service.Login(context.Background(), "a@x.com", testPassword)
	require.NoError(t, err)

	token, err := env.service.RequestPasswordReset(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, env.service.ResetPassword(context.Background(), token, "brand-new-password"))

	// Old credentials are gone
	_, err = env.service.Authenticate(context.Background(), pair.AccessToken)
	assertUnauthorized(t, err)
	_, err = env.service.Login(context.Background(), "a@x.com", testPassword)
	assertUnauthorized(t, err)

	// New password works, used token does not
	_, err = env.service.Login(context.Background(), "a@x.com", "brand-new-password")
	require.NoError(t, err)
	assert.Error(t, env.service.ResetPassword(context.Background(), token, "again"))
}

/*
TestService_PasswordReset_UnknownEmail verifies an unknown email is silently
accepted with no token stored.
*/
func TestService_PasswordReset_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.service.RequestPasswordReset(context.Background(), "ghost@x.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}
