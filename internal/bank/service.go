// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package bank

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veribank/veribank/internal/platform/apperr"
	"github.com/veribank/veribank/pkg/uuid"
)

// # Service Layer

// Service orchestrates ledger operations, enforcing account ownership on
// behalf of the authenticated caller.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a bank service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

/*
OpenAccount creates a new ledger account for the caller with a zero balance.

Parameters:
  - ctx: context.Context
  - userID: string (Owner)
  - name: string (Account label)
  - currency: string (ISO 4217 code)

Returns:
  - *Account: The created account
  - error: Storage failures
*/
func (service *Service) OpenAccount(ctx context.Context, userID, name, currency string) (*Account, error) {
	account := &Account{
		ID:       uuid.Must(),
		UserID:   userID,
		Name:     name,
		Currency: currency,
		Balance:  0,
	}

	if err := service.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("account_create_failed: %w", err)
	}

	service.logger.Info("ledger account opened",
		slog.String("account_id", account.ID),
		slog.String("user_id", userID),
	)

	return account, nil
}

/*
ListAccounts returns every ledger account the caller owns.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - []*Account: Accounts, empty slice when none
  - error: Storage failures
*/
func (service *Service) ListAccounts(ctx context.Context, userID string) ([]*Account, error) {
	accounts, err := service.repo.FindAccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account_list_failed: %w", err)
	}
	return accounts, nil
}

/*
Deposit records a credit movement against one of the caller's accounts.

Parameters:
  - ctx: context.Context
  - userID: string (Caller, must own the account)
  - accountID: string
  - amount: int64 (Minor units, strictly positive)

Returns:
  - *Account: Account with the post-movement balance
  - error: apperr.Forbidden when not the owner, apperr.NotFound, or storage failures
*/
func (service *Service) Deposit(ctx context.Context, userID, accountID string, amount int64) (*Account, error) {
	return service.applyMovement(ctx, userID, accountID, EntryDeposit, amount)
}

/*
Withdraw records a debit movement against one of the caller's accounts.

Parameters:
  - ctx: context.Context
  - userID: string (Caller, must own the account)
  - accountID: string
  - amount: int64 (Minor units, strictly positive)

Returns:
  - *Account: Account with the post-movement balance
  - error: apperr.Unprocessable on insufficient funds, apperr.Forbidden,
    apperr.NotFound, or storage failures
*/
func (service *Service) Withdraw(ctx context.Context, userID, accountID string, amount int64) (*Account, error) {
	return service.applyMovement(ctx, userID, accountID, EntryWithdraw, amount)
}

/*
History lists the recent movements of one of the caller's accounts.

Parameters:
  - ctx: context.Context
  - userID: string (Caller, must own the account)
  - accountID: string
  - limit: int

Returns:
  - []*Entry: Movements, newest first
  - error: apperr.Forbidden, apperr.NotFound, or storage failures
*/
func (service *Service) History(ctx context.Context, userID, accountID string, limit int) ([]*Entry, error) {
	if _, err := service.ownedAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}

	entries, err := service.repo.FindEntries(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("entry_list_failed: %w", err)
	}
	return entries, nil
}

// applyMovement checks ownership and applies one ledger entry.
func (service *Service) applyMovement(ctx context.Context, userID, accountID string, kind EntryKind, amount int64) (*Account, error) {
	if _, err := service.ownedAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:        uuid.Must(),
		AccountID: accountID,
		Kind:      kind,
		Amount:    amount,
	}

	account, err := service.repo.ApplyEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("entry_apply_failed: %w", err)
	}

	return account, nil
}

// ownedAccount resolves an account and enforces that the caller owns it.
func (service *Service) ownedAccount(ctx context.Context, userID, accountID string) (*Account, error) {
	account, err := service.repo.FindAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_lookup_failed: %w", err)
	}

	if account.UserID != userID {
		return nil, apperr.Forbidden("You do not own this account")
	}

	return account, nil
}
