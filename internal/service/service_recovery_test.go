// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-vault-keeper/internal/crypto"
	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/internal/store"
	"github.com/MKhiriev/go-vault-keeper/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecoveryService(users *mockUserRepository, codes *mockRecoveryCodeRepository, codeCount int) *recoveryService {
	return &recoveryService{
		userRepository:    users,
		codeRepository:    codes,
		keychain:          crypto.NewKeyChainService(),
		recoveryCodeCount: codeCount,
		logger:            logger.Nop(),
	}
}

// escrowedCode produces a plaintext recovery code and its persisted record
// holding dek wrapped under that code.
func escrowedCode(t *testing.T, userID uuid.UUID, dek []byte) (string, models.RecoveryCode) {
	t.Helper()

	keychain := crypto.NewKeyChainService()

	code, err := keychain.GenerateRecoveryCode()
	require.NoError(t, err)

	wrapped, err := keychain.WrapDEK(dek, code)
	require.NoError(t, err)

	return code, models.RecoveryCode{
		ID:           uuid.New(),
		UserID:       userID,
		CodeHash:     keychain.HashRecoveryCode(code),
		EncryptedDEK: wrapped,
	}
}

func TestRecoveryService_GenerateCodes_Success(t *testing.T) {
	userID := uuid.New()
	dek := []byte("0123456789abcdef0123456789abcdef")

	var saved []models.RecoveryCode
	codes := &mockRecoveryCodeRepository{
		saveFn: func(_ context.Context, records []models.RecoveryCode) error {
			saved = records
			return nil
		},
	}
	svc := newTestRecoveryService(&mockUserRepository{}, codes, 4)

	plainCodes, err := svc.GenerateCodes(context.Background(), models.Session{UserID: userID, DEK: dek})
	require.NoError(t, err)
	require.Len(t, plainCodes, 4)
	require.Len(t, saved, 4)

	keychain := crypto.NewKeyChainService()
	for i, code := range plainCodes {
		assert.Equal(t, userID, saved[i].UserID)
		assert.Equal(t, keychain.HashRecoveryCode(code), saved[i].CodeHash)

		escrowed, err := keychain.UnwrapDEK(saved[i].EncryptedDEK, code)
		require.NoError(t, err)
		assert.Equal(t, dek, escrowed)
	}
}

func TestRecoveryService_GenerateCodes_RefusedWhileUnusedRemain(t *testing.T) {
	codes := &mockRecoveryCodeRepository{
		countUnusedFn: func(_ context.Context, _ uuid.UUID) (int, error) {
			return 2, nil
		},
		saveFn: func(_ context.Context, _ []models.RecoveryCode) error {
			t.Fatal("no new codes may be saved while unused ones remain")
			return nil
		},
	}
	svc := newTestRecoveryService(&mockUserRepository{}, codes, 4)

	_, err := svc.GenerateCodes(context.Background(), models.Session{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrRecoveryCodesStillActive)
}

func TestRecoveryService_CheckCode(t *testing.T) {
	userID := uuid.New()
	dek := []byte("0123456789abcdef0123456789abcdef")
	code, record := escrowedCode(t, userID, dek)

	codes := &mockRecoveryCodeRepository{
		findFn: func(_ context.Context, gotUserID uuid.UUID, codeHash string) (models.RecoveryCode, error) {
			assert.Equal(t, userID, gotUserID)
			if codeHash == record.CodeHash {
				return record, nil
			}
			return models.RecoveryCode{}, store.ErrRecoveryCodeNotFound
		},
	}
	svc := newTestRecoveryService(&mockUserRepository{}, codes, 4)

	valid, err := svc.CheckCode(context.Background(), userID, code)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = svc.CheckCode(context.Background(), userID, "not-a-real-code")
	assert.ErrorIs(t, err, store.ErrRecoveryCodeNotFound)
	assert.False(t, valid)

	record.Used = true
	valid, err = svc.CheckCode(context.Background(), userID, code)
	assert.ErrorIs(t, err, ErrRecoveryCodeUsed)
	assert.False(t, valid)
}

func TestRecoveryService_CheckCode_EmptyCode(t *testing.T) {
	svc := newTestRecoveryService(&mockUserRepository{}, &mockRecoveryCodeRepository{}, 4)

	_, err := svc.CheckCode(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestRecoveryService_Recover_Success(t *testing.T) {
	keychain := crypto.NewKeyChainService()

	dek, err := keychain.GenerateDEK()
	require.NoError(t, err)

	account := models.User{ID: uuid.New(), Email: "john@example.com"}
	code, record := escrowedCode(t, account.ID, dek)

	var newHash, newWrapped string
	users := &mockUserRepository{
		byEmailFn: func(_ context.Context, email string) (models.User, error) {
			assert.Equal(t, account.Email, email)
			return account, nil
		},
		recoverFn: func(_ context.Context, userID, codeID uuid.UUID, passwordHash, encryptedDEK string) error {
			assert.Equal(t, account.ID, userID)
			assert.Equal(t, record.ID, codeID)
			newHash = passwordHash
			newWrapped = encryptedDEK
			return nil
		},
	}
	codes := &mockRecoveryCodeRepository{
		findFn: func(_ context.Context, _ uuid.UUID, codeHash string) (models.RecoveryCode, error) {
			assert.Equal(t, record.CodeHash, codeHash)
			return record, nil
		},
	}
	svc := newTestRecoveryService(users, codes, 4)

	user, gotDEK, err := svc.Recover(context.Background(), account.Email, code, "new-password")
	require.NoError(t, err)
	assert.Equal(t, account.ID, user.ID)
	assert.Equal(t, dek, gotDEK)

	ok, err := keychain.VerifyMasterPassword("new-password", newHash)
	require.NoError(t, err)
	assert.True(t, ok)

	unwrapped, err := keychain.UnwrapDEK(newWrapped, "new-password")
	require.NoError(t, err)
	assert.Equal(t, dek, unwrapped)
}

func TestRecoveryService_Recover_UsedCode(t *testing.T) {
	dek := []byte("0123456789abcdef0123456789abcdef")
	account := models.User{ID: uuid.New(), Email: "john@example.com"}
	code, record := escrowedCode(t, account.ID, dek)
	record.Used = true

	users := &mockUserRepository{
		byEmailFn: func(_ context.Context, _ string) (models.User, error) {
			return account, nil
		},
		recoverFn: func(_ context.Context, _, _ uuid.UUID, _, _ string) error {
			t.Fatal("a used code must never reach redemption")
			return nil
		},
	}
	codes := &mockRecoveryCodeRepository{
		findFn: func(_ context.Context, _ uuid.UUID, _ string) (models.RecoveryCode, error) {
			return record, nil
		},
	}
	svc := newTestRecoveryService(users, codes, 4)

	_, _, err := svc.Recover(context.Background(), account.Email, code, "new-password")
	assert.ErrorIs(t, err, ErrRecoveryCodeUsed)
}

func TestRecoveryService_Recover_UnknownEmail(t *testing.T) {
	svc := newTestRecoveryService(&mockUserRepository{}, &mockRecoveryCodeRepository{}, 4)

	_, _, err := svc.Recover(context.Background(), "nobody@example.com", "some-code", "new-password")
	assert.ErrorIs(t, err, store.ErrNoUserWasFound)
}

func TestRecoveryService_Recover_UnknownCode(t *testing.T) {
	account := models.User{ID: uuid.New(), Email: "john@example.com"}
	users := &mockUserRepository{
		byEmailFn: func(_ context.Context, _ string) (models.User, error) {
			return account, nil
		},
	}
	svc := newTestRecoveryService(users, &mockRecoveryCodeRepository{}, 4)

	_, _, err := svc.Recover(context.Background(), account.Email, "not-a-real-code", "new-password")
	assert.ErrorIs(t, err, store.ErrRecoveryCodeNotFound)
}

func TestRecoveryService_Recover_ConcurrentConsumption(t *testing.T) {
	keychain := crypto.NewKeyChainService()

	dek, err := keychain.GenerateDEK()
	require.NoError(t, err)

	account := models.User{ID: uuid.New(), Email: "john@example.com"}
	code, record := escrowedCode(t, account.ID, dek)

	users := &mockUserRepository{
		byEmailFn: func(_ context.Context, _ string) (models.User, error) {
			return account, nil
		},
		recoverFn: func(_ context.Context, _, _ uuid.UUID, _, _ string) error {
			return store.ErrRecoveryCodeAlreadyUsed
		},
	}
	codes := &mockRecoveryCodeRepository{
		findFn: func(_ context.Context, _ uuid.UUID, _ string) (models.RecoveryCode, error) {
			return record, nil
		},
	}
	svc := newTestRecoveryService(users, codes, 4)

	_, _, err = svc.Recover(context.Background(), account.Email, code, "new-password")
	assert.ErrorIs(t, err, ErrRecoveryCodeUsed)
}

func TestRecoveryService_Recover_EmptyInput(t *testing.T) {
	svc := newTestRecoveryService(&mockUserRepository{}, &mockRecoveryCodeRepository{}, 4)

	_, _, err := svc.Recover(context.Background(), "", "code", "password")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)

	_, _, err = svc.Recover(context.Background(), "john@example.com", "", "password")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)

	_, _, err = svc.Recover(context.Background(), "john@example.com", "code", "")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}
