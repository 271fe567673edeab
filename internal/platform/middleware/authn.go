// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/veribank/veribank/internal/platform/apperr"
	"github.com/veribank/veribank/internal/platform/constants"
	"github.com/veribank/veribank/internal/platform/ctxutil"
	"github.com/veribank/veribank/internal/platform/respond"
	"github.com/veribank/veribank/internal/platform/sec"
)

// RequestAuthenticator validates a bearer credential end to end: signature
// and lifetime, owning account existence, and server-side token state.
//
// # Why an interface?
//
// Defining RequestAuthenticator here decouples the middleware from the `auth`
// service implementation, allowing us to easily inject fakes during unit testing.
//
// Implementations return a 401-class [apperr.AppError] for every rejection
// (malformed, expired, revoked, unknown subject) and an infrastructure fault
// for store/directory outages; the two must never be conflated.
type RequestAuthenticator interface {
	Authenticate(ctx context.Context, tokenValue string) (*sec.AuthClaims, error)
}

// PublicMatcher reports whether a request may bypass authentication entirely.
type PublicMatcher func(request *http.Request) bool

// PublicPaths builds a [PublicMatcher] from an explicit allow-list of exact
// request paths (login, register, forgot-password, introspection, probes).
func PublicPaths(paths ...string) PublicMatcher {
	allowed := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		allowed[path] = struct{}{}
	}
	return func(request *http.Request) bool {
		_, ok := allowed[request.URL.Path]
		return ok
	}
}

// Authenticate intercepts every inbound request except the allow-list.
//
// # Flow
//  1. Allow-listed route: pass through untouched.
//  2. Missing or malformed 'Authorization: Bearer <token>' header: reject 401.
//  3. Full validation via [RequestAuthenticator]: signature, subject lookup,
//     store-state check. Any authentication failure: uniform 401.
//  4. Infrastructure fault during validation: surface as 5xx. An unreachable
//     store is an outage, not an invalid credential.
//  5. Success: bind the verified [*sec.AuthClaims] into the request context.
//
// The contract is "bind identity or reject": a protected route is never
// reached anonymously.
func Authenticate(authenticator RequestAuthenticator, isPublic PublicMatcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Allow-list ─────────────────────────────────────────────────
			if isPublic != nil && isPublic(request) {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Header Extraction ──────────────────────────────────────────
			tokenValue, ok := bearerToken(request)
			if !ok {
				logRejection(request, tokenValue, "missing or malformed authorization header")
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 3. Full Validation ────────────────────────────────────────────
			claims, err := authenticator.Authenticate(request.Context(), tokenValue)
			if err != nil {
				if apperr.IsAuthFailure(err) {
					// Never tell the client WHY the token failed (signature vs.
					// revocation); the visible outcome is uniformly 401.
					logRejection(request, tokenValue, err.Error())
					respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
					return
				}
				// Infrastructure fault: propagate as-is (5xx + server-side log).
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Mounted inside protected route groups as a second line of defense after
// [Authenticate]; it catches wiring mistakes where a route was accidentally
// added to the allow-list.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetAuthUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// bearerToken extracts the credential from the Authorization header.
// The second return is false when the header is absent or not Bearer-shaped.
func bearerToken(request *http.Request) (string, bool) {
	header := strings.TrimSpace(request.Header.Get(constants.HeaderAuthorization))
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// logRejection records enough context for incident investigation: caller IP,
// user agent, and the offending token value. Server-side only.
func logRejection(request *http.Request, tokenValue, reason string) {
	ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "request_rejected",
		slog.String("ip", RealIP(request)),
		slog.String("user_agent", request.UserAgent()),
		slog.String("token", tokenValue),
		slog.String("reason", reason),
	)
}
