// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package users

import (
	"context"
	"fmt"
	"log/slog"
)

// # Service Layer

// TokenIssuer mints a fresh credential pair for a user, replacing whatever
// pair they held before. Profile updates reissue credentials so the embedded
// identity claims never go stale.
type TokenIssuer interface {
	ReissueFor(ctx context.Context, userID string) (accessToken, refreshToken string, err error)
}

// Service orchestrates profile operations against the account directory.
type Service struct {
	repo   Repository
	issuer TokenIssuer
	logger *slog.Logger
}

// NewService creates a users service.
func NewService(repo Repository, issuer TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		issuer: issuer,
		logger: logger,
	}
}

// ProfileUpdate carries the mutable profile fields. Email and role are
// immutable through this surface.
type ProfileUpdate struct {
	Name       string
	NationalID string
	Phone      string
}

/*
Get retrieves the profile of a single user.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *User: The account entity
  - error: apperr.NotFound or infrastructure failures
*/
func (service *Service) Get(ctx context.Context, userID string) (*User, error) {
	user, err := service.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user_lookup_failed: %w", err)
	}
	return user, nil
}

/*
UpdateProfile applies the given changes and reissues the caller's credential
pair so subsequent requests carry the updated identity claims.

Parameters:
  - ctx: context.Context
  - userID: string
  - update: ProfileUpdate

Returns:
  - *User: The updated account entity
  - accessToken, refreshToken: Fresh credential pair
  - error: apperr.NotFound or infrastructure failures
*/
func (service *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, string, string, error) {
	user, err := service.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", "", fmt.Errorf("user_lookup_failed: %w", err)
	}

	user.Name = update.Name
	user.NationalID = update.NationalID
	user.Phone = update.Phone

	if err := service.repo.Update(ctx, user); err != nil {
		return nil, "", "", fmt.Errorf("user_update_failed: %w", err)
	}

	accessToken, refreshToken, err := service.issuer.ReissueFor(ctx, user.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("credential_reissue_failed: %w", err)
	}

	service.logger.Info("user profile updated", slog.String("user_id", user.ID))

	return user, accessToken, refreshToken, nil
}
