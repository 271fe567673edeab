// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

/*
Package auth implements the credential lifecycle for the Veribank API.

It owns token issuance and rotation, server-side revocation tracking, login
attempt throttling, and the per-request token validation consumed by the
authentication middleware.

# Architecture

The package is layered leaf-first. The token [Manager] orchestrates the
signing codec and the [TokenStore]; the [Service] composes the manager with
the user directory and the [AttemptGuard] to expose the login, refresh,
logout and introspection operations.
*/
package auth

import "time"

// # Token Entity

// TokenKind discriminates the two credential roles a user holds at once.
type TokenKind string

const (
	// Short-lived credential authorizing ordinary requests
	KindAccess TokenKind = "access"

	// Longer-lived credential exchanged only for a new pair
	KindRefresh TokenKind = "refresh"
)

// Token is the durable record of one issued credential.
//
// Rows are append-only audit records once revoked: flags are flipped, the row
// is retained. Physical deletion happens only when a fresh pair replaces the
// user's previous tokens.
type Token struct {
	ID        string    `json:"id"`
	Value     string    `json:"value"`
	Kind      TokenKind `json:"kind"`
	UserID    string    `json:"user_id"`
	Expired   bool      `json:"expired"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the stored state still permits this token to
// authenticate. Signature validity is a separate, necessary check performed
// by the codec; store state is a hard override on top of it.
func (t *Token) Valid() bool {
	return !t.Expired && !t.Revoked
}

// TokenPair is the result of one issuance: the two encoded credential strings
// handed back to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
