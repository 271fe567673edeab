// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package sec_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veribank/veribank/internal/platform/sec"
)

func newTestCodec(t *testing.T) *sec.Codec {
	t.Helper()
	codec, err := sec.NewCodec("test-signing-secret", "veribank.io", "veribank-clients")
	require.NoError(t, err)
	return codec
}

func testPrincipal() sec.Principal {
	return sec.Principal{
		UserID:     "user-123",
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Role:       sec.RoleCustomer,
		NationalID: "AB-1234567",
		Phone:      "+44 20 7946 0000",
	}
}

/*
TestCodec_IssueVerify_RoundTrip verifies that a freshly issued credential
decodes back to the exact principal it was issued for.
*/
func TestCodec_IssueVerify_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	principal := testPrincipal()

	token, err := codec.Issue(principal, 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, principal, claims.Principal())
	assert.Equal(t, principal.UserID, claims.Subject)
	assert.Equal(t, "veribank.io", claims.Issuer)
}

/*
TestCodec_Issue_UniquePerIssuance verifies that two back-to-back issuances for
the same principal and TTL produce distinct credential strings. The token
store keeps a unique index on the raw value and pair rotation replaces old
rows with new ones, so a repeated string would collide on insert and leave a
pre-rotation credential indistinguishable from its replacement.
*/
func TestCodec_Issue_UniquePerIssuance(t *testing.T) {
	codec := newTestCodec(t)
	principal := testPrincipal()

	first, err := codec.Issue(principal, 15*time.Minute)
	require.NoError(t, err)
	second, err := codec.Issue(principal, 15*time.Minute)
	require.NoError(t, err)

	// Same second on the wall clock, still two different credentials.
	require.NotEqual(t, first, second)

	firstClaims, err := codec.Verify(first)
	require.NoError(t, err)
	secondClaims, err := codec.Verify(second)
	require.NoError(t, err)

	assert.NotEmpty(t, firstClaims.ID)
	assert.NotEmpty(t, secondClaims.ID)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

/*
TestCodec_Verify_Expired verifies that a credential whose embedded lifetime has
elapsed is rejected.
*/
func TestCodec_Verify_Expired(t *testing.T) {
	codec := newTestCodec(t)

	// A negative TTL yields a token that expired one minute ago.
	token, err := codec.Issue(testPrincipal(), -1*time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.Error(t, err)
}

// verifyAt re-parses a credential with the verifier's exact rule set but a
// pinned clock, so expiry can be tested on both sides of the boundary
// without sleeping.
func verifyAt(t *testing.T, tokenString string, now time.Time) error {
	t.Helper()
	_, err := jwt.ParseWithClaims(tokenString, &sec.AuthClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte("test-signing-secret"), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("veribank.io"),
		jwt.WithAudience("veribank-clients"),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	return err
}

/*
TestCodec_Verify_ExpiryBoundary verifies the lifetime edge itself: a
credential still verifies one second before its expiry instant and is
rejected one second after it.
*/
func TestCodec_Verify_ExpiryBoundary(t *testing.T) {
	codec := newTestCodec(t)

	const timeToLive = 15 * time.Minute
	token, err := codec.Issue(testPrincipal(), timeToLive)
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	expiry := claims.ExpiresAt.Time

	assert.NoError(t, verifyAt(t, token, expiry.Add(-1*time.Second)))
	assert.Error(t, verifyAt(t, token, expiry.Add(1*time.Second)))
}

/*
TestCodec_Verify_TamperedSignature verifies that a token signed with a
different secret does not verify.
*/
func TestCodec_Verify_TamperedSignature(t *testing.T) {
	codec := newTestCodec(t)

	other, err := sec.NewCodec("a-different-secret", "veribank.io", "veribank-clients")
	require.NoError(t, err)

	token, err := other.Issue(testPrincipal(), 15*time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.Error(t, err)
}

/*
TestCodec_Verify_WrongIssuerOrAudience verifies that issuer and audience
claims are both enforced.
*/
func TestCodec_Verify_WrongIssuerOrAudience(t *testing.T) {
	codec := newTestCodec(t)

	wrongIssuer, err := sec.NewCodec("test-signing-secret", "evil.example", "veribank-clients")
	require.NoError(t, err)
	wrongAudience, err := sec.NewCodec("test-signing-secret", "veribank.io", "someone-else")
	require.NoError(t, err)

	issuedElsewhere, err := wrongIssuer.Issue(testPrincipal(), 15*time.Minute)
	require.NoError(t, err)
	_, err = codec.Verify(issuedElsewhere)
	assert.Error(t, err)

	forOthers, err := wrongAudience.Issue(testPrincipal(), 15*time.Minute)
	require.NoError(t, err)
	_, err = codec.Verify(forOthers)
	assert.Error(t, err)
}

/*
TestCodec_Verify_Malformed verifies that garbage input fails with an error,
not a panic.
*/
func TestCodec_Verify_Malformed(t *testing.T) {
	codec := newTestCodec(t)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Verify(input)
		assert.Error(t, err, "input %q should not verify", input)
	}
}

/*
TestCodec_Issue_EmptyPrincipal verifies that issuing with no principal is a
programming error that surfaces loudly.
*/
func TestCodec_Issue_EmptyPrincipal(t *testing.T) {
	codec := newTestCodec(t)

	assert.Panics(t, func() {
		_, _ = codec.Issue(sec.Principal{}, 15*time.Minute)
	})
}

/*
TestCodec_Issue_IndependentTTLs verifies that two credentials issued for the
same principal with different TTLs are distinct strings with their own expiry.
*/
func TestCodec_Issue_IndependentTTLs(t *testing.T) {
	codec := newTestCodec(t)
	principal := testPrincipal()

	short, err := codec.Issue(principal, 15*time.Minute)
	require.NoError(t, err)
	long, err := codec.Issue(principal, 7*24*time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, short, long)

	shortClaims, err := codec.Verify(short)
	require.NoError(t, err)
	longClaims, err := codec.Verify(long)
	require.NoError(t, err)

	assert.True(t, longClaims.ExpiresAt.After(shortClaims.ExpiresAt.Time))
	assert.Equal(t, shortClaims.Principal(), longClaims.Principal())
}
