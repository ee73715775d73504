// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-keeper/internal/config"
	"github.com/MKhiriev/go-vault-keeper/internal/crypto"
	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/internal/store"
	"github.com/MKhiriev/go-vault-keeper/models"
	"github.com/google/uuid"
)

// recoveryService is the concrete implementation of RecoveryService. Each
// recovery code is an independent escrow of the account's DEK: the code
// itself is the unwrap secret, so the server can restore vault access
// without ever holding the master password.
type recoveryService struct {
	// userRepository applies the credential replacement on redemption.
	userRepository store.UserRepository

	// codeRepository persists and looks up recovery-code records.
	codeRepository store.RecoveryCodeRepository

	// keychain provides code generation, hashing, and envelope operations.
	keychain crypto.KeyChainService

	// recoveryCodeCount is the number of codes issued per batch.
	recoveryCodeCount int

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewRecoveryService constructs a RecoveryService over the given
// repositories and keychain, with the batch size taken from cfg.
func NewRecoveryService(userRepository store.UserRepository, codeRepository store.RecoveryCodeRepository, keychain crypto.KeyChainService, cfg config.App, logger *logger.Logger) RecoveryService {
	return &recoveryService{
		userRepository:    userRepository,
		codeRepository:    codeRepository,
		keychain:          keychain,
		recoveryCodeCount: cfg.RecoveryCodeCount,
		logger:            logger,
	}
}

// GenerateCodes issues a fresh batch of recovery codes for the session's
// account, wrapping the session's DEK under each code.
//
// Regeneration is refused while unused codes from a previous batch remain:
// silently invalidating codes a user may have printed out would lock them
// out exactly when they need recovery.
func (r *recoveryService) GenerateCodes(ctx context.Context, session models.Session) ([]string, error) {
	log := logger.FromContext(ctx)

	unused, err := r.codeRepository.CountUnused(ctx, session.UserID)
	if err != nil {
		log.Err(err).Str("func", "recoveryService.GenerateCodes").Msg("failed to count unused recovery codes")
		return nil, fmt.Errorf("failed to count unused recovery codes: %w", err)
	}
	if unused > 0 {
		log.Warn().
			Str("user_id", session.UserID.String()).
			Int("unused", unused).
			Msg("recovery code generation refused: unused codes remain")
		return nil, ErrRecoveryCodesStillActive
	}

	plainCodes, records, err := buildRecoveryCodes(r.keychain, session.UserID, session.DEK, r.recoveryCodeCount)
	if err != nil {
		log.Err(err).Str("func", "recoveryService.GenerateCodes").Msg("failed to build recovery codes")
		return nil, fmt.Errorf("failed to build recovery codes: %w", err)
	}

	if err := r.codeRepository.SaveCodes(ctx, records); err != nil {
		log.Err(err).Str("func", "recoveryService.GenerateCodes").Msg("failed to save recovery codes")
		return nil, fmt.Errorf("failed to save recovery codes: %w", err)
	}

	return plainCodes, nil
}

// CheckCode reports whether code is still redeemable for the given account.
// An unknown code surfaces as store.ErrRecoveryCodeNotFound and a consumed
// one as ErrRecoveryCodeUsed; the lookup itself never consumes the code.
func (r *recoveryService) CheckCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	log := logger.FromContext(ctx)

	if code == "" {
		return false, ErrInvalidDataProvided
	}

	record, err := r.codeRepository.FindByUserAndHash(ctx, userID, r.keychain.HashRecoveryCode(code))
	if err != nil {
		if errors.Is(err, store.ErrRecoveryCodeNotFound) {
			return false, err
		}

		log.Err(err).Str("func", "recoveryService.CheckCode").Msg("recovery code lookup failed")
		return false, fmt.Errorf("recovery code lookup failed: %w", err)
	}
	if record.Used {
		return false, ErrRecoveryCodeUsed
	}

	return true, nil
}

// Recover redeems a recovery code and sets a new master password.
//
// The DEK is unwrapped from the code's own escrow copy and re-wrapped under
// the new password; credentials replacement and code consumption commit in
// one transaction. Returns the user and the plaintext DEK so the caller can
// open a session immediately.
//
// An unknown email or code surfaces as the store's not-found sentinel; an
// already-used code, including one consumed by a concurrent redemption, as
// ErrRecoveryCodeUsed.
func (r *recoveryService) Recover(ctx context.Context, email, code, newMasterPassword string) (models.User, []byte, error) {
	log := logger.FromContext(ctx)

	if email == "" || code == "" || newMasterPassword == "" {
		log.Error().Str("func", "recoveryService.Recover").Msg("invalid recovery data provided")
		return models.User{}, nil, ErrInvalidDataProvided
	}

	foundUser, err := r.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.User{}, nil, err
		}

		log.Err(err).Str("func", "recoveryService.Recover").Msg("user search by email failed")
		return models.User{}, nil, fmt.Errorf("user search by email failed: %w", err)
	}

	record, err := r.codeRepository.FindByUserAndHash(ctx, foundUser.ID, r.keychain.HashRecoveryCode(code))
	if err != nil {
		if errors.Is(err, store.ErrRecoveryCodeNotFound) {
			return models.User{}, nil, err
		}

		log.Err(err).Str("func", "recoveryService.Recover").Msg("recovery code lookup failed")
		return models.User{}, nil, fmt.Errorf("recovery code lookup failed: %w", err)
	}
	if record.Used {
		log.Warn().Str("user_id", foundUser.ID.String()).Msg("recovery attempted with used code")
		return models.User{}, nil, ErrRecoveryCodeUsed
	}

	dek, err := r.keychain.UnwrapDEK(record.EncryptedDEK, code)
	if err != nil {
		log.Err(err).Str("func", "recoveryService.Recover").Msg("failed to unwrap dek from recovery code")
		return models.User{}, nil, fmt.Errorf("failed to unwrap dek from recovery code: %w", err)
	}

	newPasswordHash, err := r.keychain.HashMasterPassword(newMasterPassword)
	if err != nil {
		log.Err(err).Str("func", "recoveryService.Recover").Msg("failed to hash new master password")
		return models.User{}, nil, fmt.Errorf("failed to hash new master password: %w", err)
	}

	rewrappedDEK, err := r.keychain.WrapDEK(dek, newMasterPassword)
	if err != nil {
		log.Err(err).Str("func", "recoveryService.Recover").Msg("failed to wrap dek")
		return models.User{}, nil, fmt.Errorf("failed to wrap dek: %w", err)
	}

	if err := r.userRepository.RecoverMasterCredentials(ctx, foundUser.ID, record.ID, newPasswordHash, rewrappedDEK); err != nil {
		if errors.Is(err, store.ErrRecoveryCodeAlreadyUsed) {
			return models.User{}, nil, ErrRecoveryCodeUsed
		}

		log.Err(err).Str("func", "recoveryService.Recover").Msg("failed to recover master credentials")
		return models.User{}, nil, fmt.Errorf("failed to recover master credentials: %w", err)
	}

	return foundUser, dek, nil
}
