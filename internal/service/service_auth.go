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

// authService is the concrete implementation of AuthService. It composes
// the keychain and the user repository: every credential mutation keeps the
// password hash and the wrapped DEK consistent with each other.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// keychain provides password hashing and the envelope operations.
	keychain crypto.KeyChainService

	// recoveryCodeCount is the number of recovery codes issued at signup.
	recoveryCodeCount int

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs an AuthService wired to the given UserRepository
// and keychain, with the recovery-code batch size taken from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(userRepository store.UserRepository, keychain crypto.KeyChainService, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		userRepository:    userRepository,
		keychain:          keychain,
		recoveryCodeCount: cfg.RecoveryCodeCount,
		logger:            logger,
	}
}

// Signup creates a new account.
//
// The master password is hashed with Argon2id, a fresh DEK is generated and
// wrapped under the password, and the initial recovery-code batch is built
// with the DEK wrapped under each code. User row and codes are persisted in
// one transaction, so a half-created account is never observable.
//
// Returns the persisted user, the plaintext DEK (for immediate session
// issuance), and the plaintext recovery codes (shown exactly once), or:
//   - ErrInvalidDataProvided if email or password is empty.
//   - store.ErrEmailAlreadyExists if the email is already registered.
func (a *authService) Signup(ctx context.Context, email, masterPassword string) (models.User, []byte, []string, error) {
	log := logger.FromContext(ctx)

	if email == "" || masterPassword == "" {
		log.Error().Str("func", "authService.Signup").Msg("invalid signup data provided")
		return models.User{}, nil, nil, ErrInvalidDataProvided
	}

	passwordHash, err := a.keychain.HashMasterPassword(masterPassword)
	if err != nil {
		log.Err(err).Str("func", "authService.Signup").Msg("failed to hash master password")
		return models.User{}, nil, nil, fmt.Errorf("failed to hash master password: %w", err)
	}

	dek, err := a.keychain.GenerateDEK()
	if err != nil {
		log.Err(err).Str("func", "authService.Signup").Msg("failed to generate dek")
		return models.User{}, nil, nil, fmt.Errorf("failed to generate dek: %w", err)
	}

	wrappedDEK, err := a.keychain.WrapDEK(dek, masterPassword)
	if err != nil {
		log.Err(err).Str("func", "authService.Signup").Msg("failed to wrap dek")
		return models.User{}, nil, nil, fmt.Errorf("failed to wrap dek: %w", err)
	}

	user := models.User{
		ID:                 uuid.New(),
		Email:              email,
		MasterPasswordHash: passwordHash,
		EncryptedDEK:       wrappedDEK,
	}

	plainCodes, codeRecords, err := buildRecoveryCodes(a.keychain, user.ID, dek, a.recoveryCodeCount)
	if err != nil {
		log.Err(err).Str("func", "authService.Signup").Msg("failed to build recovery codes")
		return models.User{}, nil, nil, fmt.Errorf("failed to build recovery codes: %w", err)
	}

	registeredUser, err := a.userRepository.CreateUserWithRecoveryCodes(ctx, user, codeRecords)
	if err != nil {
		log.Err(err).Str("email", email).Msg("user creation ended with error")
		return models.User{}, nil, nil, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registeredUser, dek, plainCodes, nil
}

// Login authenticates an existing user and unwraps the account's DEK.
//
// An unknown email surfaces as store.ErrNoUserWasFound, a failed password
// check as ErrWrongMasterPassword.
func (a *authService) Login(ctx context.Context, email, masterPassword string) (models.User, []byte, error) {
	log := logger.FromContext(ctx)

	if email == "" || masterPassword == "" {
		log.Error().Str("func", "authService.Login").Msg("invalid login data provided")
		return models.User{}, nil, ErrInvalidDataProvided
	}

	foundUser, err := a.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.User{}, nil, err
		}

		log.Err(err).Str("func", "authService.Login").Msg("user search by email failed")
		return models.User{}, nil, fmt.Errorf("user search by email failed: %w", err)
	}

	ok, err := a.keychain.VerifyMasterPassword(masterPassword, foundUser.MasterPasswordHash)
	if err != nil {
		log.Err(err).Str("func", "authService.Login").Msg("failed to verify master password")
		return models.User{}, nil, fmt.Errorf("failed to verify master password: %w", err)
	}
	if !ok {
		log.Warn().Str("email", email).Msg("wrong master password")
		return models.User{}, nil, ErrWrongMasterPassword
	}

	dek, err := a.keychain.UnwrapDEK(foundUser.EncryptedDEK, masterPassword)
	if err != nil {
		log.Err(err).Str("func", "authService.Login").Msg("failed to unwrap dek")
		return models.User{}, nil, fmt.Errorf("failed to unwrap dek: %w", err)
	}

	return foundUser, dek, nil
}

// ChangeMasterPassword rotates the master password of the session's account.
//
// The DEK is unwrapped from the stored blob with the old password and
// re-wrapped under the new one; both columns are replaced together. Vault
// entries stay untouched — they are sealed under the DEK, not the password.
func (a *authService) ChangeMasterPassword(ctx context.Context, session models.Session, oldPassword, newPassword string) error {
	log := logger.FromContext(ctx)

	if oldPassword == "" || newPassword == "" {
		log.Error().Str("func", "authService.ChangeMasterPassword").Msg("invalid password change data provided")
		return ErrInvalidDataProvided
	}

	foundUser, err := a.userRepository.FindUserByID(ctx, session.UserID)
	if err != nil {
		log.Err(err).Str("func", "authService.ChangeMasterPassword").Msg("user search by id failed")
		return fmt.Errorf("user search by id failed: %w", err)
	}

	ok, err := a.keychain.VerifyMasterPassword(oldPassword, foundUser.MasterPasswordHash)
	if err != nil {
		log.Err(err).Str("func", "authService.ChangeMasterPassword").Msg("failed to verify master password")
		return fmt.Errorf("failed to verify master password: %w", err)
	}
	if !ok {
		log.Warn().Str("user_id", session.UserID.String()).Msg("wrong master password on change")
		return ErrWrongMasterPassword
	}

	dek, err := a.keychain.UnwrapDEK(foundUser.EncryptedDEK, oldPassword)
	if err != nil {
		log.Err(err).Str("func", "authService.ChangeMasterPassword").Msg("failed to unwrap dek")
		return fmt.Errorf("failed to unwrap dek: %w", err)
	}

	newPasswordHash, err := a.keychain.HashMasterPassword(newPassword)
	if err != nil {
		log.Err(err).Str("func", "authService.ChangeMasterPassword").Msg("failed to hash new master password")
		return fmt.Errorf("failed to hash new master password: %w", err)
	}

	rewrappedDEK, err := a.keychain.WrapDEK(dek, newPassword)
	if err != nil {
		log.Err(err).Str("func", "authService.ChangeMasterPassword").Msg("failed to wrap dek")
		return fmt.Errorf("failed to wrap dek: %w", err)
	}

	if err := a.userRepository.UpdateMasterCredentials(ctx, session.UserID, newPasswordHash, rewrappedDEK); err != nil {
		log.Err(err).Str("func", "authService.ChangeMasterPassword").Msg("failed to update master credentials")
		return fmt.Errorf("failed to update master credentials: %w", err)
	}

	return nil
}

// buildRecoveryCodes generates count plaintext recovery codes and the
// matching persistence records, wrapping dek under each code so redemption
// can restore vault access without the master password.
func buildRecoveryCodes(keychain crypto.KeyChainService, userID uuid.UUID, dek []byte, count int) ([]string, []models.RecoveryCode, error) {
	plainCodes := make([]string, 0, count)
	records := make([]models.RecoveryCode, 0, count)

	for i := 0; i < count; i++ {
		code, err := keychain.GenerateRecoveryCode()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate recovery code: %w", err)
		}

		wrappedDEK, err := keychain.WrapDEK(dek, code)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to wrap dek under recovery code: %w", err)
		}

		plainCodes = append(plainCodes, code)
		records = append(records, models.RecoveryCode{
			ID:           uuid.New(),
			UserID:       userID,
			CodeHash:     keychain.HashRecoveryCode(code),
			EncryptedDEK: wrappedDEK,
		})
	}

	return plainCodes, records, nil
}
