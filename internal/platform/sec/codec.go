// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

// Package sec provides cryptographic primitives and credential encoding.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces ([auth.CredentialIssuer],
// [middleware.TokenVerifier]).
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/veribank/veribank/pkg/uuid"
)

// Principal is the minimal identity projected into a signed credential.
//
// It is immutable once embedded in a token: profile changes are reflected only
// by issuing a fresh pair.
type Principal struct {
	UserID     string
	Name       string
	Email      string
	Role       UserRole
	NationalID string
	Phone      string
}

// AuthClaims represents the payload embedded inside a signed credential.
//
// # Why custom claims?
//
// By embedding the full principal inside the token, the request authenticator
// can reconstruct the caller's identity without a directory round-trip for the
// claim fields themselves; only existence and revocation are checked against
// the backing stores.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the payload small.
	UserID     string `json:"uid"`
	Name       string `json:"nam"`
	Email      string `json:"eml"`
	Role       string `json:"rol"`
	NationalID string `json:"nid,omitempty"`
	Phone      string `json:"phn,omitempty"`
}

// Principal reconstructs the [Principal] carried by the claims.
func (c *AuthClaims) Principal() Principal {
	return Principal{
		UserID:     c.UserID,
		Name:       c.Name,
		Email:      c.Email,
		Role:       UserRole(c.Role),
		NationalID: c.NationalID,
		Phone:      c.Phone,
	}
}

// Codec encodes and decodes signed credentials using a symmetric HS256 key.
//
// # Purity
//
// Neither operation touches the network or a store. Whether a
// cryptographically valid credential is still usable is decided by the token
// store, never here.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
}

// NewCodec creates a new Codec.
//
// The signing secret is shared only between the issuing services; it never
// leaves process memory.
func NewCodec(secret, issuer, audience string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("sec: signing secret must not be empty")
	}
	return &Codec{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Issue encodes the principal plus standard claims into a signed string.
//
// Expiry arithmetic is UTC and additive; callers pass TTLs as whole minutes
// converted to a [time.Duration].
func (codec *Codec) Issue(principal Principal, timeToLive time.Duration) (string, error) {
	if principal.UserID == "" {
		// Issuing an anonymous credential is a programming error, not input.
		panic("sec: issue called with empty principal")
	}

	currentTime := time.Now().UTC()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// A fresh jti per issuance keeps every credential string unique,
			// even for the same principal and TTL within one clock second.
			// Rotation and the store's unique value index both depend on it.
			ID:        uuid.Must(),
			Subject:   principal.UserID,
			Issuer:    codec.issuer,
			Audience:  jwt.ClaimStrings{codec.audience},
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:     principal.UserID,
		Name:       principal.Name,
		Email:      principal.Email,
		Role:       string(principal.Role),
		NationalID: principal.NationalID,
		Phone:      principal.Phone,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature, issuer, audience, and expiry of a credential.
//
// Any mismatch, malformed input, or elapsed lifetime is a returned error,
// never a panic. The caller must treat every failure identically (reject);
// the error detail is for server-side logs only.
func (codec *Codec) Verify(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return codec.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(codec.issuer),
		jwt.WithAudience(codec.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	return claims, nil
}
