// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/veribank/veribank/internal/platform/apperr"
	"github.com/veribank/veribank/internal/platform/sec"
	"github.com/veribank/veribank/internal/users"
	"github.com/veribank/veribank/pkg/uuid"
)

// # Login Outcomes

// LoginOutcome enumerates the three possible results of a login attempt.
// The outcome-to-message mapping is pure so evaluation order can never be
// ambiguous.
type LoginOutcome int

const (
	OutcomeSuccess LoginOutcome = iota
	OutcomeLockedOut
	OutcomeInvalidCredentials
)

// Message returns the client-facing text for a failed outcome. Lockouts get
// a distinguishable message; credential failures stay generic to prevent
// account enumeration.
func (outcome LoginOutcome) Message() string {
	switch outcome {
	case OutcomeLockedOut:
		return "Account temporarily locked due to repeated failed logins. Try again later."
	case OutcomeInvalidCredentials:
		return "Invalid email or password"
	default:
		return ""
	}
}

// # Service

// Service implements the credential lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to the login, refresh,
// or validation logic must be reviewed by the security team.
type Service struct {
	userRepository   users.Repository
	tokenStore       TokenStore
	resetTokenStore  ResetTokenStore
	attemptGuard     AttemptGuard
	tokenManager     *Manager
	codec            *sec.Codec
	lockoutThreshold int
	logger           *slog.Logger
}

// NewService constructs the auth [Service] with necessary dependencies.
func NewService(
	userRepo users.Repository,
	tokenStore TokenStore,
	resetStore ResetTokenStore,
	guard AttemptGuard,
	manager *Manager,
	codec *sec.Codec,
	lockoutThreshold int,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:   userRepo,
		tokenStore:       tokenStore,
		resetTokenStore:  resetStore,
		attemptGuard:     guard,
		tokenManager:     manager,
		codec:            codec,
		lockoutThreshold: lockoutThreshold,
		logger:           logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account holder.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	NationalID string
	Phone      string
}

/*
Register validates, hashes, and persists a brand new customer account, then
issues its first credential pair.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *users.User: Created entity
  - *TokenPair: First credential pair for the account
  - error: Conflict (if email exists) or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*users.User, *TokenPair, error) {

	// Verify email uniqueness. Return a client-safe Conflict error.
	_, err := service.userRepository.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, nil, apperr.Conflict("Email is already registered")
	}
	if appErr := apperr.As(err); appErr == nil || appErr.HTTPStatus != http.StatusNotFound {
		return nil, nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &users.User{
		ID:           uuid.Must(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleCustomer,
		NationalID:   input.NationalID,
		Phone:        input.Phone,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Issue the account's first credential pair
	pair, err := service.tokenManager.IssueFor(ctx, user.Principal())
	if err != nil {
		return nil, nil, fmt.Errorf("auth_service_register_issue_failed: %w", err)
	}

	return user, pair, nil
}

// # Authentication Flow

/*
Login validates user credentials under the attempt guard and issues a fresh
credential pair, orphaning any prior sessions.

Description: When the account key has reached the lockout threshold, the
attempt is short-circuited with a lockout result without even checking the
password. A guard read failure degrades to "not locked" so a cache outage
never locks anyone out permanently.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - *TokenPair: Fresh credential pair
  - error: apperr.Unauthorized with an outcome message, or internal failures
*/
func (service *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	key := GuardKey(email)

	count, err := service.attemptGuard.Count(ctx, key)
	if err != nil {
		// Advisory state only. Degrade to "not locked" and keep serving.
		service.logger.Warn("login attempt guard unreachable", slog.String("error", err.Error()))
		count = 0
	}

	if count >= service.lockoutThreshold {
		return nil, apperr.Unauthorized(OutcomeLockedOut.Message())
	}

	// Unknown account and wrong password are indistinguishable to the caller.
	user, err := service.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus == http.StatusNotFound {
			service.recordFailure(ctx, key)
			return nil, apperr.Unauthorized(OutcomeInvalidCredentials.Message())
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		service.recordFailure(ctx, key)
		return nil, apperr.Unauthorized(OutcomeInvalidCredentials.Message())
	}

	if err := service.attemptGuard.Reset(ctx, key); err != nil {
		service.logger.Warn("login attempt guard reset failed", slog.String("error", err.Error()))
	}

	pair, err := service.tokenManager.IssueFor(ctx, user.Principal())
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_issue_failed: %w", err)
	}

	service.logger.Info("user logged in", slog.String("user_id", user.ID))

	return pair, nil
}

/*
Refresh implements credential rotation: it exchanges a valid refresh token
for a brand new pair, fully invalidating the old one.

Parameters:
  - ctx: context.Context
  - refreshToken: string (The encoded refresh credential)

Returns:
  - *TokenPair: Rotated credential pair
  - error: apperr.Unauthorized or internal failures
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := service.codec.Verify(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	token, err := service.lookupToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if token == nil || token.Kind != KindRefresh || !token.Valid() {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	user, err := service.userRepository.FindByID(ctx, claims.UserID)
	if err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus == http.StatusNotFound {
			return nil, apperr.Unauthorized("Invalid or expired refresh token")
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	pair, err := service.tokenManager.IssueFor(ctx, user.Principal())
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_issue_failed: %w", err)
	}

	return pair, nil
}

/*
Logout revokes every valid credential the user currently holds.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(ctx context.Context, userID string) error {
	if err := service.tokenManager.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.logger.Info("user logged out", slog.String("user_id", userID))

	return nil
}

/*
ReissueFor mints a fresh credential pair for an existing account, orphaning
any prior sessions. Used after profile updates so the embedded identity
claims never go stale.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - accessToken, refreshToken: Encoded credential strings
  - error: apperr.NotFound or internal failures
*/
func (service *Service) ReissueFor(ctx context.Context, userID string) (string, string, error) {
	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("auth_service_reissue_lookup_failed: %w", err)
	}

	pair, err := service.tokenManager.IssueFor(ctx, user.Principal())
	if err != nil {
		return "", "", fmt.Errorf("auth_service_reissue_failed: %w", err)
	}

	return pair.AccessToken, pair.RefreshToken, nil
}

// # Request Validation

/*
Authenticate validates a bearer credential for one inbound request and
returns the identity claims to bind.

Description: The pipeline is signature/expiry verification, then owning
account resolution, then the stored-state check. Store state is a hard
override: a token that is cryptographically valid but flagged revoked or
expired never authenticates. Absence and revocation both surface as the same
apperr.Unauthorized; infrastructure faults propagate distinctly so outages
are never misreported as rejected credentials.

Parameters:
  - ctx: context.Context
  - tokenValue: string (The raw bearer credential)

Returns:
  - *sec.AuthClaims: Verified identity claims
  - error: apperr.Unauthorized or infrastructure failures
*/
func (service *Service) Authenticate(ctx context.Context, tokenValue string) (*sec.AuthClaims, error) {
	claims, err := service.codec.Verify(tokenValue)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	if _, err := service.userRepository.FindByID(ctx, claims.UserID); err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus == http.StatusNotFound {
			return nil, apperr.Unauthorized("Invalid or expired token")
		}
		return nil, fmt.Errorf("authenticate_directory_lookup_failed: %w", err)
	}

	token, err := service.lookupToken(ctx, tokenValue)
	if err != nil {
		return nil, err
	}
	if token == nil || token.Kind != KindAccess || !token.Valid() {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	return claims, nil
}

// # Introspection

/*
IsRevoked reports whether a credential has been revoked server-side.

Description: Fail-closed. A token absent from the store counts as revoked,
since nothing the store does not know about may authenticate.

Parameters:
  - ctx: context.Context
  - tokenValue: string

Returns:
  - bool: Revocation state
  - error: Infrastructure failures
*/
func (service *Service) IsRevoked(ctx context.Context, tokenValue string) (bool, error) {
	token, err := service.lookupToken(ctx, tokenValue)
	if err != nil {
		return false, err
	}
	if token == nil {
		return true, nil
	}
	return token.Revoked, nil
}

/*
IsExpired reports whether a credential has passed its lifetime, either by
the stored flag or by its embedded expiry claim.

Description: Fail-closed, like IsRevoked.

Parameters:
  - ctx: context.Context
  - tokenValue: string

Returns:
  - bool: Expiry state
  - error: Infrastructure failures
*/
func (service *Service) IsExpired(ctx context.Context, tokenValue string) (bool, error) {
	token, err := service.lookupToken(ctx, tokenValue)
	if err != nil {
		return false, err
	}
	if token == nil || token.Expired {
		return true, nil
	}

	// The stored flag only flips on revocation; the embedded expiry claim
	// covers natural lifetime elapse.
	if _, err := service.codec.Verify(tokenValue); err != nil {
		return true, nil
	}

	return false, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis. An unknown
email is silently accepted to prevent account enumeration.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - string: The reset token, empty when the email is unknown
  - error: Generation or storage errors
*/
func (service *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := service.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokenStore.Set(ctx, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the
directory, and revokes every active credential for security cleanup.

Parameters:
  - ctx: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: Validation or update failures
*/
func (service *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := service.resetTokenStore.Get(ctx, token)
	if err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security cleanup: revoke every active credential for this user
	_ = service.tokenManager.RevokeAll(ctx, userID)

	// Delete the used token from Redis
	_ = service.resetTokenStore.Delete(ctx, token)

	return nil
}

// lookupToken resolves a credential string against the store, mapping
// absence to nil rather than an error. Absence is a normal outcome; only
// infrastructure faults propagate.
func (service *Service) lookupToken(ctx context.Context, tokenValue string) (*Token, error) {
	token, err := service.tokenStore.FindByValue(ctx, tokenValue)
	if err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("token_state_lookup_failed: %w", err)
	}
	return token, nil
}

// recordFailure increments the guard counter, logging but otherwise ignoring
// guard outages.
func (service *Service) recordFailure(ctx context.Context, key string) {
	if err := service.attemptGuard.RecordFailure(ctx, key); err != nil {
		service.logger.Warn("login attempt guard record failed", slog.String("error", err.Error()))
	}
}
