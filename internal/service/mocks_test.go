// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-vault-keeper/internal/store"
	"github.com/MKhiriev/go-vault-keeper/models"
	"github.com/google/uuid"
)

var errStorage = errors.New("storage error")

// ─────────────────────────────────────────────
// Mock: store.UserRepository
// ─────────────────────────────────────────────

type mockUserRepository struct {
	createFn  func(ctx context.Context, user models.User, codes []models.RecoveryCode) (models.User, error)
	byEmailFn func(ctx context.Context, email string) (models.User, error)
	byIDFn    func(ctx context.Context, id uuid.UUID) (models.User, error)
	updateFn  func(ctx context.Context, userID uuid.UUID, passwordHash, encryptedDEK string) error
	recoverFn func(ctx context.Context, userID, codeID uuid.UUID, passwordHash, encryptedDEK string) error
}

func (m *mockUserRepository) CreateUserWithRecoveryCodes(ctx context.Context, user models.User, codes []models.RecoveryCode) (models.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, user, codes)
	}
	return user, nil
}

func (m *mockUserRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	if m.byEmailFn != nil {
		return m.byEmailFn(ctx, email)
	}
	return models.User{}, store.ErrNoUserWasFound
}

func (m *mockUserRepository) FindUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	if m.byIDFn != nil {
		return m.byIDFn(ctx, id)
	}
	return models.User{}, store.ErrNoUserWasFound
}

func (m *mockUserRepository) UpdateMasterCredentials(ctx context.Context, userID uuid.UUID, passwordHash, encryptedDEK string) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, passwordHash, encryptedDEK)
	}
	return nil
}

func (m *mockUserRepository) RecoverMasterCredentials(ctx context.Context, userID, codeID uuid.UUID, passwordHash, encryptedDEK string) error {
	if m.recoverFn != nil {
		return m.recoverFn(ctx, userID, codeID, passwordHash, encryptedDEK)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.RecoveryCodeRepository
// ─────────────────────────────────────────────

type mockRecoveryCodeRepository struct {
	saveFn        func(ctx context.Context, codes []models.RecoveryCode) error
	findFn        func(ctx context.Context, userID uuid.UUID, codeHash string) (models.RecoveryCode, error)
	countUnusedFn func(ctx context.Context, userID uuid.UUID) (int, error)
}

func (m *mockRecoveryCodeRepository) SaveCodes(ctx context.Context, codes []models.RecoveryCode) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, codes)
	}
	return nil
}

func (m *mockRecoveryCodeRepository) FindByUserAndHash(ctx context.Context, userID uuid.UUID, codeHash string) (models.RecoveryCode, error) {
	if m.findFn != nil {
		return m.findFn(ctx, userID, codeHash)
	}
	return models.RecoveryCode{}, store.ErrRecoveryCodeNotFound
}

func (m *mockRecoveryCodeRepository) CountUnused(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.countUnusedFn != nil {
		return m.countUnusedFn(ctx, userID)
	}
	return 0, nil
}

// ─────────────────────────────────────────────
// Mock: store.VaultEntryRepository
// ─────────────────────────────────────────────

type mockVaultEntryRepository struct {
	saveFn   func(ctx context.Context, entry models.VaultEntry) (models.VaultEntry, error)
	findFn   func(ctx context.Context, userID, entryID uuid.UUID) (models.VaultEntry, error)
	existsFn func(ctx context.Context, userID uuid.UUID, websiteURL, appName *string) (bool, error)
	listFn   func(ctx context.Context, userID uuid.UUID, updatedAfter *time.Time, limit uint64) ([]models.VaultEntry, error)
	updateFn func(ctx context.Context, userID, entryID uuid.UUID, patch store.VaultEntryPatch) error
	deleteFn func(ctx context.Context, userID, entryID uuid.UUID) error
}

func (m *mockVaultEntryRepository) Save(ctx context.Context, entry models.VaultEntry) (models.VaultEntry, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, entry)
	}
	return entry, nil
}

func (m *mockVaultEntryRepository) FindByID(ctx context.Context, userID, entryID uuid.UUID) (models.VaultEntry, error) {
	if m.findFn != nil {
		return m.findFn(ctx, userID, entryID)
	}
	return models.VaultEntry{}, store.ErrVaultEntryNotFound
}

func (m *mockVaultEntryRepository) ExistsForSite(ctx context.Context, userID uuid.UUID, websiteURL, appName *string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID, websiteURL, appName)
	}
	return false, nil
}

func (m *mockVaultEntryRepository) List(ctx context.Context, userID uuid.UUID, updatedAfter *time.Time, limit uint64) ([]models.VaultEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, updatedAfter, limit)
	}
	return nil, nil
}

func (m *mockVaultEntryRepository) Update(ctx context.Context, userID, entryID uuid.UUID, patch store.VaultEntryPatch) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, entryID, patch)
	}
	return nil
}

func (m *mockVaultEntryRepository) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, entryID)
	}
	return nil
}

// ─────────────────────────────────────────────
// In-memory store.SessionCache
// ─────────────────────────────────────────────

// memorySessionCache mimics the Redis-backed cache closely enough for
// session lifecycle tests: values expire by wall clock and Expire slides
// the deadline forward.
type memorySessionCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	expires map[string]time.Time
}

func newMemorySessionCache() *memorySessionCache {
	return &memorySessionCache{
		values:  make(map[string][]byte),
		expires: make(map[string]time.Time),
	}
}

func (c *memorySessionCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	c.expires[key] = time.Now().Add(ttl)
	return nil
}

func (c *memorySessionCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[key]
	if !ok || time.Now().After(c.expires[key]) {
		return nil, store.ErrSessionNotFound
	}
	return value, nil
}

func (c *memorySessionCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	delete(c.expires, key)
	return nil
}

func (c *memorySessionCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; !ok {
		return store.ErrSessionNotFound
	}
	c.expires[key] = time.Now().Add(ttl)
	return nil
}
