// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

/*
Package bank implements the monetary ledger: account creation, balance
bookkeeping, and the deposit/withdraw entry log.

It consumes the authenticated identity bound by the middleware; it performs
no credential work of its own.
*/
package bank

import "time"

// # Entities

// Account is one ledger account owned by a user. Balance is held in minor
// units (cents) to avoid floating point drift.
type Account struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryKind discriminates the two ledger movements.
type EntryKind string

const (
	EntryDeposit  EntryKind = "deposit"
	EntryWithdraw EntryKind = "withdraw"
)

// Entry is one immutable ledger movement against an account.
type Entry struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Kind      EntryKind `json:"kind"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
