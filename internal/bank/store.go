// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package bank

import "context"

// Repository is the storage contract for ledger accounts and their entries.
//
// Balance mutation is a single conditional unit: ApplyEntry records the
// movement and adjusts the balance inside one transaction, failing the whole
// unit when a withdrawal would overdraw.
type Repository interface {

	// CreateAccount persists a new ledger account.
	CreateAccount(ctx context.Context, account *Account) error

	// FindAccount resolves an account by id.
	FindAccount(ctx context.Context, id string) (*Account, error)

	// FindAccountsByUser lists every account owned by the user.
	FindAccountsByUser(ctx context.Context, userID string) ([]*Account, error)

	// ApplyEntry atomically records a movement and adjusts the balance.
	// Returns apperr.Unprocessable when a withdrawal exceeds the balance.
	ApplyEntry(ctx context.Context, entry *Entry) (*Account, error)

	// FindEntries lists an account's movements, newest first.
	FindEntries(ctx context.Context, accountID string, limit int) ([]*Entry, error)
}
