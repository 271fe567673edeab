// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package bank

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veribank/veribank/internal/platform/apperr"
	"github.com/veribank/veribank/internal/platform/dberr"
)

// # Ledger Repository

// PostgresRepository implements the Repository interface using pgx against
// the bank schema.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the ledger Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const accountColumns = `id, user_id, name, currency, balance, created_at, updated_at`

/*
CreateAccount persists a new ledger account with a zero opening balance.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: Infrastructure failures
*/
func (repository *PostgresRepository) CreateAccount(context context.Context, account *Account) error {
	const query = `
		INSERT INTO bank.account (id, user_id, name, currency, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.UserID,
		account.Name,
		account.Currency,
		account.Balance,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "ledger")
	}

	return nil
}

/*
FindAccount resolves a ledger account by id.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Account: Hydrated account
  - error: apperr.NotFound or infrastructure failures
*/
func (repository *PostgresRepository) FindAccount(context context.Context, id string) (*Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM bank.account
		WHERE id = $1`

	account := &Account{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&account.Currency,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, dberr.Wrap(err, "ledger")
	}

	return account, nil
}

/*
FindAccountsByUser lists every ledger account owned by the user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Account: Accounts, empty slice when none
  - error: Infrastructure failures
*/
func (repository *PostgresRepository) FindAccountsByUser(context context.Context, userID string) ([]*Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM bank.account
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "ledger")
	}
	defer rows.Close()

	accounts := []*Account{}
	for rows.Next() {
		account := &Account{}
		err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.Name,
			&account.Currency,
			&account.Balance,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "ledger")
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "ledger")
	}

	return accounts, nil
}

/*
ApplyEntry atomically records a ledger movement and adjusts the balance.

Description: The balance update is conditional in SQL, so an overdraw fails
without ever writing, even under concurrent withdrawals against the same
account. The entry row and the balance change commit together or not at all.

Parameters:
  - context: context.Context
  - entry: *Entry

Returns:
  - *Account: Account with the post-movement balance
  - error: apperr.Unprocessable on insufficient funds, apperr.NotFound, or
    infrastructure failures
*/
func (repository *PostgresRepository) ApplyEntry(context context.Context, entry *Entry) (*Account, error) {
	delta := entry.Amount
	if entry.Kind == EntryWithdraw {
		delta = -entry.Amount
	}

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, dberr.Wrap(err, "ledger")
	}
	defer func() { _ = transaction.Rollback(context) }()

	const updateQuery = `
		UPDATE bank.account
		SET balance = balance + $2, updated_at = $3
		WHERE id = $1 AND balance + $2 >= 0
		RETURNING ` + accountColumns

	account := &Account{}
	err = transaction.QueryRow(context, updateQuery, entry.AccountID, delta, time.Now()).Scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&account.Currency,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing account from an overdraw
			if _, findErr := repository.FindAccount(context, entry.AccountID); findErr != nil {
				return nil, findErr
			}
			return nil, apperr.Unprocessable("Insufficient funds")
		}
		return nil, dberr.Wrap(err, "ledger")
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	const insertQuery = `
		INSERT INTO bank.entry (id, account_id, kind, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = transaction.Exec(context, insertQuery,
		entry.ID,
		entry.AccountID,
		entry.Kind,
		entry.Amount,
		entry.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "ledger")
	}

	if err := transaction.Commit(context); err != nil {
		return nil, dberr.Wrap(err, "ledger")
	}

	return account, nil
}

/*
FindEntries lists an account's ledger movements, newest first.

Parameters:
  - context: context.Context
  - accountID: string
  - limit: int (Maximum rows to return)

Returns:
  - []*Entry: Movements, empty slice when none
  - error: Infrastructure failures
*/
func (repository *PostgresRepository) FindEntries(context context.Context, accountID string, limit int) ([]*Entry, error) {
	const query = `
		SELECT id, account_id, kind, amount, created_at
		FROM bank.entry
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := repository.pool.Query(context, query, accountID, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "ledger")
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		entry := &Entry{}
		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Kind,
			&entry.Amount,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "ledger")
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "ledger")
	}

	return entries, nil
}
