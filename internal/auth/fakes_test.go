// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/veribank/veribank/internal/auth"
	"github.com/veribank/veribank/internal/platform/apperr"
	"github.com/veribank/veribank/internal/users"
)

// # In-Memory Token Store

// memoryTokenStore is a map-backed TokenStore that records the order of
// mutating operations and supports fault injection.
type memoryTokenStore struct {
	mu       sync.Mutex
	tokens   map[string]*auth.Token
	ops      []string
	failWith error
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: map[string]*auth.Token{}}
}

func (store *memoryTokenStore) FindByValue(_ context.Context, value string) (*auth.Token, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.failWith != nil {
		return nil, store.failWith
	}

	for _, token := range store.tokens {
		if token.Value == value {
			return copyToken(token), nil
		}
	}
	return nil, apperr.NotFound("Token")
}

func (store *memoryTokenStore) FindValidByUser(_ context.Context, userID string) ([]*auth.Token, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.failWith != nil {
		return nil, store.failWith
	}

	result := []*auth.Token{}
	for _, token := range store.tokens {
		if token.UserID == userID && token.Valid() {
			result = append(result, copyToken(token))
		}
	}
	return result, nil
}

func (store *memoryTokenStore) FindAllByUser(_ context.Context, userID string) ([]*auth.Token, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.failWith != nil {
		return nil, store.failWith
	}

	result := []*auth.Token{}
	for _, token := range store.tokens {
		if token.UserID == userID {
			result = append(result, copyToken(token))
		}
	}
	return result, nil
}

func (store *memoryTokenStore) Save(_ context.Context, token *auth.Token) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.failWith != nil {
		return store.failWith
	}

	store.ops = append(store.ops, "save")
	store.tokens[token.ID] = copyToken(token)
	return nil
}

func (store *memoryTokenStore) SaveAll(_ context.Context, tokens []*auth.Token) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.failWith != nil {
		return store.failWith
	}

	store.ops = append(store.ops, "saveAll")
	for _, token := range tokens {
		store.tokens[token.ID] = copyToken(token)
	}
	return nil
}

func (store *memoryTokenStore) DeleteAll(_ context.Context, tokens []*auth.Token) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.failWith != nil {
		return store.failWith
	}

	store.ops = append(store.ops, "deleteAll")
	for _, token := range tokens {
		delete(store.tokens, token.ID)
	}
	return nil
}

// flag directly mutates a stored token's lifecycle flags, bypassing the
// manager, to simulate out-of-band state changes.
func (store *memoryTokenStore) flag(value string, expired, revoked bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, token := range store.tokens {
		if token.Value == value {
			token.Expired = expired
			token.Revoked = revoked
		}
	}
}

func copyToken(token *auth.Token) *auth.Token {
	clone := *token
	return &clone
}

// # In-Memory Attempt Guard

// memoryGuard is a clock-driven AttemptGuard whose windows elapse when the
// injected clock is advanced.
type memoryGuard struct {
	mu       sync.Mutex
	counts   map[string]int
	deadline map[string]time.Time
	window   time.Duration
	now      func() time.Time
	failWith error
}

func newMemoryGuard(window time.Duration, now func() time.Time) *memoryGuard {
	return &memoryGuard{
		counts:   map[string]int{},
		deadline: map[string]time.Time{},
		window:   window,
		now:      now,
	}
}

func (guard *memoryGuard) RecordFailure(_ context.Context, key string) error {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	if guard.failWith != nil {
		return guard.failWith
	}

	guard.expireLocked(key)
	guard.counts[key]++
	if guard.counts[key] == 1 {
		guard.deadline[key] = guard.now().Add(guard.window)
	}
	return nil
}

func (guard *memoryGuard) Count(_ context.Context, key string) (int, error) {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	if guard.failWith != nil {
		return 0, guard.failWith
	}

	guard.expireLocked(key)
	return guard.counts[key], nil
}

func (guard *memoryGuard) Reset(_ context.Context, key string) error {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	if guard.failWith != nil {
		return guard.failWith
	}

	delete(guard.counts, key)
	delete(guard.deadline, key)
	return nil
}

func (guard *memoryGuard) expireLocked(key string) {
	if deadline, ok := guard.deadline[key]; ok && !guard.now().Before(deadline) {
		delete(guard.counts, key)
		delete(guard.deadline, key)
	}
}

// # In-Memory Reset Token Store

type memoryResetStore struct {
	mu     sync.Mutex
	byID   map[string]string
	latest string
}

func newMemoryResetStore() *memoryResetStore {
	return &memoryResetStore{byID: map[string]string{}}
}

func (store *memoryResetStore) Set(_ context.Context, token, userID string, _ time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.byID[token] = userID
	store.latest = token
	return nil
}

func (store *memoryResetStore) Get(_ context.Context, token string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	userID, ok := store.byID[token]
	if !ok {
		return "", apperr.NotFound("Reset token is invalid or expired")
	}
	return userID, nil
}

func (store *memoryResetStore) Delete(_ context.Context, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.byID, token)
	return nil
}

// # In-Memory User Directory

// fakeDirectory is a map-backed users.Repository.
type fakeDirectory struct {
	mu       sync.Mutex
	byID     map[string]*users.User
	failWith error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{byID: map[string]*users.User{}}
}

func (directory *fakeDirectory) FindByID(_ context.Context, id string) (*users.User, error) {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	if directory.failWith != nil {
		return nil, directory.failWith
	}

	user, ok := directory.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (directory *fakeDirectory) FindByEmail(_ context.Context, email string) (*users.User, error) {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	if directory.failWith != nil {
		return nil, directory.failWith
	}

	for _, user := range directory.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (directory *fakeDirectory) Create(_ context.Context, user *users.User) error {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	clone := *user
	directory.byID[user.ID] = &clone
	return nil
}

func (directory *fakeDirectory) Update(_ context.Context, user *users.User) error {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	existing, ok := directory.byID[user.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	existing.Name = user.Name
	existing.NationalID = user.NationalID
	existing.Phone = user.Phone
	return nil
}

func (directory *fakeDirectory) UpdatePassword(_ context.Context, userID, newHash string) error {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	existing, ok := directory.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	existing.PasswordHash = newHash
	return nil
}
