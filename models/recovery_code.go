package models

import (
	"time"

	"github.com/google/uuid"
)

// RecoveryCode is a single-use credential that can unwrap the owner's DEK
// independently of the master password. Only the code's SHA-256 hash and its
// own wrapping of the DEK are persisted — the plaintext code is shown to the
// user exactly once at generation time.
type RecoveryCode struct {
	// ID is the unique identifier of the recovery-code record.
	ID uuid.UUID `json:"id"`

	// UserID references the owning account.
	UserID uuid.UUID `json:"user_id"`

	// CodeHash is the hex-encoded SHA-256 of the plaintext code. It serves
	// as a lookup key; guessing resistance comes from the code's entropy.
	CodeHash string `json:"-"`

	// EncryptedDEK is the owner's DEK wrapped under the KEK derived from
	// this code: base64(nonce || ciphertext).
	EncryptedDEK string `json:"-"`

	// Used marks a redeemed code. The transition false -> true happens
	// exactly once and is never reversed.
	Used bool `json:"used"`

	// CreatedAt is the timestamp when the code was generated.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last state change (redemption).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the RecoveryCode model.
func (r RecoveryCode) TableName() string {
	return "recovery_codes"
}
