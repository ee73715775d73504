// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-vault-keeper/models"
	"github.com/google/uuid"
)

// AuthService handles account lifecycle: registration, credential
// verification, and master-password rotation. It owns the envelope scheme
// end to end — callers hand it plaintext passwords and get back a plaintext
// DEK, never a key-encryption key.
type AuthService interface {
	// Signup creates an account: hashes the master password, generates a
	// fresh DEK, wraps it under the password, and issues the initial
	// recovery-code batch in the same transaction. Returns the persisted
	// user, the plaintext DEK, and the one-time plaintext recovery codes.
	//
	// Errors:
	//   - ErrInvalidDataProvided if email or password is empty.
	//   - store.ErrEmailAlreadyExists if the email is taken.
	Signup(ctx context.Context, email, masterPassword string) (models.User, []byte, []string, error)

	// Login verifies the master password and unwraps the account's DEK.
	//
	// Errors:
	//   - store.ErrNoUserWasFound if no account exists for email.
	//   - ErrWrongMasterPassword if the password does not verify.
	Login(ctx context.Context, email, masterPassword string) (models.User, []byte, error)

	// ChangeMasterPassword rotates the master password of the account bound
	// to session. The DEK is re-wrapped under the new password; vault
	// entries are untouched. Returns ErrWrongMasterPassword if the old
	// password does not verify.
	ChangeMasterPassword(ctx context.Context, session models.Session, oldPassword, newPassword string) error
}

// SessionService manages opaque bearer tokens in the ephemeral cache.
type SessionService interface {
	// Issue creates a session for user carrying its plaintext DEK and
	// returns the opaque token.
	Issue(ctx context.Context, user models.User, dek []byte) (string, error)

	// Authenticate resolves a token to its session payload. An absent or
	// expired token yields ErrSessionInvalid.
	Authenticate(ctx context.Context, token string) (models.Session, error)

	// Refresh extends the session's TTL to a full new window (sliding
	// expiration). Called only after a successfully handled request.
	Refresh(ctx context.Context, token string) error

	// Revoke deletes the session. Revoking an unknown token is not an
	// error — logout is idempotent.
	Revoke(ctx context.Context, token string) error
}

// RecoveryService manages single-use account recovery codes.
type RecoveryService interface {
	// GenerateCodes issues a fresh batch of recovery codes for the account
	// bound to session, each wrapping the account's DEK under the code
	// itself. Returns ErrRecoveryCodesStillActive while unused codes from a
	// previous batch remain.
	GenerateCodes(ctx context.Context, session models.Session) ([]string, error)

	// CheckCode reports whether code is still redeemable for the given
	// account. The lookup never consumes the code.
	//
	// Errors:
	//   - store.ErrRecoveryCodeNotFound if no such code exists for the user.
	//   - ErrRecoveryCodeUsed if the code was already consumed.
	CheckCode(ctx context.Context, userID uuid.UUID, code string) (bool, error)

	// Recover redeems a recovery code: the account's master password is
	// replaced, the DEK is re-wrapped under the new password, and the code
	// is consumed — all atomically. Returns the user and the plaintext DEK
	// so the caller can open a session immediately.
	//
	// Errors:
	//   - store.ErrNoUserWasFound if no account exists for email.
	//   - store.ErrRecoveryCodeNotFound if the code does not match.
	//   - ErrRecoveryCodeUsed if the code was already consumed, including
	//     by a concurrent redemption.
	Recover(ctx context.Context, email, code, newMasterPassword string) (models.User, []byte, error)
}

// VaultService manages encrypted vault entries on behalf of an authenticated
// session. Secret fields are encrypted with the session's DEK on the way in
// and decrypted on the way out; the persistence layer only ever sees
// ciphertext.
type VaultService interface {
	// AddEntry validates and stores a new entry. Returns
	// ErrVaultEntryAlreadyExists when the user already has a credential for
	// the same website URL or application name.
	AddEntry(ctx context.Context, session models.Session, request models.AddVaultEntryRequest) (models.DecryptedVaultEntry, error)

	// GetEntry returns one decrypted entry owned by the session's account.
	GetEntry(ctx context.Context, session models.Session, entryID uuid.UUID) (models.DecryptedVaultEntry, error)

	// ListEntries returns one page of decrypted entries. pageToken is the
	// opaque encrypted cursor from a previous page, or empty for the first
	// page. A token sealed under another account's DEK fails with
	// ErrInvalidPageToken.
	ListEntries(ctx context.Context, session models.Session, pageToken string) (models.VaultEntryPage, error)

	// UpdateEntry applies a partial update. An update with no fields yields
	// ErrInvalidDataProvided.
	UpdateEntry(ctx context.Context, session models.Session, entryID uuid.UUID, update models.VaultEntryUpdate) error

	// DeleteEntry removes one entry owned by the session's account.
	DeleteEntry(ctx context.Context, session models.Session, entryID uuid.UUID) error
}
