// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veribank/veribank/internal/platform/apperr"
	"github.com/veribank/veribank/internal/platform/dberr"
)

// # Token Repository

// PostgresTokenRepository implements the TokenStore interface using pgx
// against the auth.token table.
type PostgresTokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository creates a new PostgreSQL implementation of the TokenStore.
func NewTokenRepository(pool *pgxpool.Pool) *PostgresTokenRepository {
	return &PostgresTokenRepository{pool: pool}
}

const tokenColumns = `id, value, kind, user_id, expired, revoked, created_at`

/*
FindByValue resolves an encoded credential string to its stored record.

Parameters:
  - context: context.Context
  - value: string (The encoded credential)

Returns:
  - *Token: Hydrated token record
  - error: apperr.NotFound when absent, or infrastructure failures
*/
func (repository *PostgresTokenRepository) FindByValue(context context.Context, value string) (*Token, error) {
	const query = `
		SELECT ` + tokenColumns + `
		FROM auth.token
		WHERE value = $1`

	token := &Token{}
	err := repository.pool.QueryRow(context, query, value).Scan(
		&token.ID,
		&token.Value,
		&token.Kind,
		&token.UserID,
		&token.Expired,
		&token.Revoked,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Token")
		}
		return nil, dberr.Wrap(err, "token store")
	}

	return token, nil
}

/*
FindValidByUser returns the user's tokens with both lifecycle flags false.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Token: Valid tokens, empty slice when none
  - error: Infrastructure failures
*/
func (repository *PostgresTokenRepository) FindValidByUser(context context.Context, userID string) ([]*Token, error) {
	const query = `
		SELECT ` + tokenColumns + `
		FROM auth.token
		WHERE user_id = $1 AND expired = FALSE AND revoked = FALSE`

	return repository.queryTokens(context, query, userID)
}

/*
FindAllByUser returns every token owned by the user regardless of state.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Token: All tokens, empty slice when none
  - error: Infrastructure failures
*/
func (repository *PostgresTokenRepository) FindAllByUser(context context.Context, userID string) ([]*Token, error) {
	const query = `
		SELECT ` + tokenColumns + `
		FROM auth.token
		WHERE user_id = $1`

	return repository.queryTokens(context, query, userID)
}

/*
Save upserts a single token record keyed by id.

Parameters:
  - context: context.Context
  - token: *Token

Returns:
  - error: Infrastructure failures
*/
func (repository *PostgresTokenRepository) Save(context context.Context, token *Token) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, upsertTokenQuery,
		token.ID,
		token.Value,
		token.Kind,
		token.UserID,
		token.Expired,
		token.Revoked,
		token.CreatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "token store")
	}

	return nil
}

/*
SaveAll upserts a batch of tokens inside a single transaction so a partially
persisted pair can never be observed.

Parameters:
  - context: context.Context
  - tokens: []*Token

Returns:
  - error: Infrastructure failures
*/
func (repository *PostgresTokenRepository) SaveAll(context context.Context, tokens []*Token) error {
	if len(tokens) == 0 {
		return nil
	}

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "token store")
	}
	defer func() { _ = transaction.Rollback(context) }()

	now := time.Now()
	for _, token := range tokens {
		if token.CreatedAt.IsZero() {
			token.CreatedAt = now
		}

		_, err := transaction.Exec(context, upsertTokenQuery,
			token.ID,
			token.Value,
			token.Kind,
			token.UserID,
			token.Expired,
			token.Revoked,
			token.CreatedAt,
		)
		if err != nil {
			return dberr.Wrap(err, "token store")
		}
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "token store")
	}

	return nil
}

/*
DeleteAll removes the given tokens by id. Missing rows are not an error.

Parameters:
  - context: context.Context
  - tokens: []*Token

Returns:
  - error: Infrastructure failures
*/
func (repository *PostgresTokenRepository) DeleteAll(context context.Context, tokens []*Token) error {
	if len(tokens) == 0 {
		return nil
	}

	ids := make([]string, 0, len(tokens))
	for _, token := range tokens {
		ids = append(ids, token.ID)
	}

	const query = "DELETE FROM auth.token WHERE id = ANY($1)"
	if _, err := repository.pool.Exec(context, query, ids); err != nil {
		return dberr.Wrap(err, "token store")
	}

	return nil
}

// upsertTokenQuery overwrites an existing row with the same id, never
// duplicates it.
const upsertTokenQuery = `
	INSERT INTO auth.token (id, value, kind, user_id, expired, revoked, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE
	SET value = EXCLUDED.value,
	    kind = EXCLUDED.kind,
	    user_id = EXCLUDED.user_id,
	    expired = EXCLUDED.expired,
	    revoked = EXCLUDED.revoked`

// queryTokens runs a multi-row token query and hydrates the result set.
func (repository *PostgresTokenRepository) queryTokens(context context.Context, query string, args ...interface{}) ([]*Token, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "token store")
	}
	defer rows.Close()

	tokens := []*Token{}
	for rows.Next() {
		token := &Token{}
		err := rows.Scan(
			&token.ID,
			&token.Value,
			&token.Kind,
			&token.UserID,
			&token.Expired,
			&token.Revoked,
			&token.CreatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "token store")
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "token store")
	}

	return tokens, nil
}
