// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-vault-keeper/internal/crypto"
	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/internal/store"
	"github.com/MKhiriev/go-vault-keeper/internal/validators"
	"github.com/MKhiriev/go-vault-keeper/models"
	"github.com/google/uuid"
)

// pageSize is the fixed number of vault entries per listing page.
const pageSize = 10

// vaultService is the concrete implementation of VaultService. Secret
// fields cross the service boundary as plaintext and the persistence
// boundary as ciphertext; the session's DEK is the only key ever used.
//
// The pagination cursor is the last entry's updated_at timestamp encrypted
// under the same DEK, so a page token is only usable by the session family
// that produced it.
type vaultService struct {
	// entryRepository is the data-access layer for vault entries.
	entryRepository store.VaultEntryRepository

	// keychain provides the field-level encrypt/decrypt operations.
	keychain crypto.KeyChainService

	// validator enforces the shape rules of incoming entry requests.
	validator validators.Validator

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewVaultService constructs a VaultService over the given repository,
// keychain, and request validator.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewVaultService(entryRepository store.VaultEntryRepository, keychain crypto.KeyChainService, validator validators.Validator, logger *logger.Logger) VaultService {
	return &vaultService{
		entryRepository: entryRepository,
		keychain:        keychain,
		validator:       validator,
		logger:          logger,
	}
}

// AddEntry validates and stores a new vault entry.
//
// A password is required, plus at least one site identifier (website URL or
// app name) and at least one login identifier (username or email). One
// credential per site: if the user already stores an entry for the same
// identifier, ErrVaultEntryAlreadyExists is returned.
func (v *vaultService) AddEntry(ctx context.Context, session models.Session, request models.AddVaultEntryRequest) (models.DecryptedVaultEntry, error) {
	log := logger.FromContext(ctx)

	if err := v.validator.Validate(ctx, request); err != nil {
		log.Error().Err(err).Str("func", "vaultService.AddEntry").Msg("invalid vault entry data provided")
		return models.DecryptedVaultEntry{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	exists, err := v.entryRepository.ExistsForSite(ctx, session.UserID, request.WebsiteURL, request.AppName)
	if err != nil {
		log.Err(err).Str("func", "vaultService.AddEntry").Msg("failed to check for existing entry")
		return models.DecryptedVaultEntry{}, fmt.Errorf("failed to check for existing entry: %w", err)
	}
	if exists {
		return models.DecryptedVaultEntry{}, ErrVaultEntryAlreadyExists
	}

	encryptedUsername, err := v.encryptOptional(request.Username, session.DEK)
	if err != nil {
		return models.DecryptedVaultEntry{}, fmt.Errorf("failed to encrypt username: %w", err)
	}

	encryptedEmail, err := v.encryptOptional(request.Email, session.DEK)
	if err != nil {
		return models.DecryptedVaultEntry{}, fmt.Errorf("failed to encrypt email: %w", err)
	}

	encryptedPassword, err := v.keychain.Encrypt([]byte(request.Password), session.DEK)
	if err != nil {
		return models.DecryptedVaultEntry{}, fmt.Errorf("failed to encrypt password: %w", err)
	}

	saved, err := v.entryRepository.Save(ctx, models.VaultEntry{
		ID:                uuid.New(),
		UserID:            session.UserID,
		WebsiteURL:        request.WebsiteURL,
		AppName:           request.AppName,
		EncryptedUsername: encryptedUsername,
		EncryptedEmail:    encryptedEmail,
		EncryptedPassword: encryptedPassword,
	})
	if err != nil {
		log.Err(err).Str("func", "vaultService.AddEntry").Msg("failed to save vault entry")
		return models.DecryptedVaultEntry{}, fmt.Errorf("failed to save vault entry: %w", err)
	}

	return models.DecryptedVaultEntry{
		ID:         saved.ID,
		WebsiteURL: saved.WebsiteURL,
		AppName:    saved.AppName,
		Username:   request.Username,
		Email:      request.Email,
		Password:   request.Password,
		CreatedAt:  saved.CreatedAt,
		UpdatedAt:  saved.UpdatedAt,
	}, nil
}

// GetEntry returns one decrypted entry owned by the session's account.
func (v *vaultService) GetEntry(ctx context.Context, session models.Session, entryID uuid.UUID) (models.DecryptedVaultEntry, error) {
	log := logger.FromContext(ctx)

	entry, err := v.entryRepository.FindByID(ctx, session.UserID, entryID)
	if err != nil {
		log.Err(err).Str("func", "vaultService.GetEntry").Msg("vault entry lookup failed")
		return models.DecryptedVaultEntry{}, fmt.Errorf("vault entry lookup failed: %w", err)
	}

	return v.decryptEntry(entry, session.DEK)
}

// ListEntries returns one page of decrypted entries.
//
// An empty pageToken starts from the beginning; otherwise the token is
// decrypted with the session's DEK into the previous page's updated_at
// watermark. A full page yields a fresh token sealed from its last entry;
// a short page means the listing is exhausted and the token is omitted.
func (v *vaultService) ListEntries(ctx context.Context, session models.Session, pageToken string) (models.VaultEntryPage, error) {
	log := logger.FromContext(ctx)

	var updatedAfter *time.Time
	if pageToken != "" {
		watermark, err := v.parsePageToken(pageToken, session.DEK)
		if err != nil {
			log.Warn().Str("func", "vaultService.ListEntries").Msg("rejected page token")
			return models.VaultEntryPage{}, ErrInvalidPageToken
		}
		updatedAfter = &watermark
	}

	entries, err := v.entryRepository.List(ctx, session.UserID, updatedAfter, pageSize)
	if err != nil {
		log.Err(err).Str("func", "vaultService.ListEntries").Msg("vault entry listing failed")
		return models.VaultEntryPage{}, fmt.Errorf("vault entry listing failed: %w", err)
	}

	page := models.VaultEntryPage{
		Entries: make([]models.DecryptedVaultEntry, 0, len(entries)),
	}

	for _, entry := range entries {
		decrypted, err := v.decryptEntry(entry, session.DEK)
		if err != nil {
			return models.VaultEntryPage{}, err
		}

		page.Entries = append(page.Entries, decrypted)
	}

	if len(entries) == pageSize {
		token, err := v.buildPageToken(entries[len(entries)-1].UpdatedAt, session.DEK)
		if err != nil {
			return models.VaultEntryPage{}, err
		}

		page.NextPageToken = token
	}

	return page, nil
}

// UpdateEntry applies a partial update to one entry. Secret fields are
// re-encrypted under the session's DEK with fresh nonces; untouched fields
// keep their existing ciphertext.
func (v *vaultService) UpdateEntry(ctx context.Context, session models.Session, entryID uuid.UUID, update models.VaultEntryUpdate) error {
	log := logger.FromContext(ctx)

	if err := v.validator.Validate(ctx, update); err != nil {
		log.Error().Err(err).Str("func", "vaultService.UpdateEntry").Msg("invalid vault entry update provided")
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	encryptedUsername, err := v.encryptOptional(update.Username, session.DEK)
	if err != nil {
		return fmt.Errorf("failed to encrypt username: %w", err)
	}

	encryptedEmail, err := v.encryptOptional(update.Email, session.DEK)
	if err != nil {
		return fmt.Errorf("failed to encrypt email: %w", err)
	}

	encryptedPassword, err := v.encryptOptional(update.Password, session.DEK)
	if err != nil {
		return fmt.Errorf("failed to encrypt password: %w", err)
	}

	patch := store.VaultEntryPatch{
		WebsiteURL:        update.WebsiteURL,
		AppName:           update.AppName,
		EncryptedUsername: encryptedUsername,
		EncryptedEmail:    encryptedEmail,
		EncryptedPassword: encryptedPassword,
	}

	if err := v.entryRepository.Update(ctx, session.UserID, entryID, patch); err != nil {
		log.Err(err).Str("func", "vaultService.UpdateEntry").Msg("vault entry update failed")
		return fmt.Errorf("vault entry update failed: %w", err)
	}

	return nil
}

// DeleteEntry removes one entry owned by the session's account.
func (v *vaultService) DeleteEntry(ctx context.Context, session models.Session, entryID uuid.UUID) error {
	log := logger.FromContext(ctx)

	if err := v.entryRepository.Delete(ctx, session.UserID, entryID); err != nil {
		log.Err(err).Str("func", "vaultService.DeleteEntry").Msg("vault entry deletion failed")
		return fmt.Errorf("vault entry deletion failed: %w", err)
	}

	return nil
}

// encryptOptional encrypts a single optional field, passing nil through.
func (v *vaultService) encryptOptional(value *string, dek []byte) (*string, error) {
	if value == nil {
		return nil, nil
	}

	encrypted, err := v.keychain.Encrypt([]byte(*value), dek)
	if err != nil {
		return nil, err
	}

	return &encrypted, nil
}

// decryptOptional decrypts a single optional field, passing nil through.
func (v *vaultService) decryptOptional(value *string, dek []byte) (*string, error) {
	if value == nil {
		return nil, nil
	}

	decrypted, err := v.keychain.Decrypt(*value, dek)
	if err != nil {
		return nil, err
	}

	plain := string(decrypted)
	return &plain, nil
}

// decryptEntry converts a persisted entry into its decrypted response form.
func (v *vaultService) decryptEntry(entry models.VaultEntry, dek []byte) (models.DecryptedVaultEntry, error) {
	username, err := v.decryptOptional(entry.EncryptedUsername, dek)
	if err != nil {
		return models.DecryptedVaultEntry{}, fmt.Errorf("failed to decrypt username: %w", err)
	}

	email, err := v.decryptOptional(entry.EncryptedEmail, dek)
	if err != nil {
		return models.DecryptedVaultEntry{}, fmt.Errorf("failed to decrypt email: %w", err)
	}

	password, err := v.keychain.Decrypt(entry.EncryptedPassword, dek)
	if err != nil {
		return models.DecryptedVaultEntry{}, fmt.Errorf("failed to decrypt password: %w", err)
	}

	return models.DecryptedVaultEntry{
		ID:         entry.ID,
		WebsiteURL: entry.WebsiteURL,
		AppName:    entry.AppName,
		Username:   username,
		Email:      email,
		Password:   string(password),
		CreatedAt:  entry.CreatedAt,
		UpdatedAt:  entry.UpdatedAt,
	}, nil
}

// buildPageToken seals an updated_at watermark into an opaque cursor.
func (v *vaultService) buildPageToken(watermark time.Time, dek []byte) (string, error) {
	token, err := v.keychain.Encrypt([]byte(watermark.Format(time.RFC3339Nano)), dek)
	if err != nil {
		return "", fmt.Errorf("failed to build page token: %w", err)
	}

	return token, nil
}

// parsePageToken opens a cursor back into its watermark. Tampered tokens
// and tokens sealed under another account's DEK fail at decryption.
func (v *vaultService) parsePageToken(token string, dek []byte) (time.Time, error) {
	plain, err := v.keychain.Decrypt(token, dek)
	if err != nil {
		if errors.Is(err, crypto.ErrDecryptionFailed) || errors.Is(err, crypto.ErrCiphertextTooShort) {
			return time.Time{}, ErrInvalidPageToken
		}

		return time.Time{}, err
	}

	watermark, err := time.Parse(time.RFC3339Nano, string(plain))
	if err != nil {
		return time.Time{}, ErrInvalidPageToken
	}

	return watermark, nil
}
