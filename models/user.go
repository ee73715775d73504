package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a vault account. Authentication is performed against
// MasterPasswordHash; all of the user's secrets are encrypted with a single
// data-encryption key (DEK) that is stored only in wrapped form.
type User struct {
	// ID is the unique identifier of the account.
	ID uuid.UUID `json:"id"`

	// Email is the unique login identifier of the account.
	Email string `json:"email"`

	// MasterPasswordHash is the Argon2id hash of the master password in
	// self-contained PHC format. Never exposed via JSON.
	MasterPasswordHash string `json:"-"`

	// EncryptedDEK is the user's DEK wrapped under the KEK derived from the
	// current master password: base64(nonce || ciphertext). The plaintext DEK
	// never reaches the relational store.
	EncryptedDEK string `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last credential change
	// (password change or account recovery).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
