package models

import "github.com/google/uuid"

// Request and response DTOs for the HTTP transport layer. Shape-level
// validation (email format, password length) happens in the handlers before
// the services are invoked.

// SignupRequest carries the credentials for account creation.
type SignupRequest struct {
	Email          string `json:"email"`
	MasterPassword string `json:"master_password"`
}

// SignupResponse returns the new account id and the one-time plaintext
// recovery codes. The codes are not retrievable again.
type SignupResponse struct {
	ID            uuid.UUID `json:"id"`
	RecoveryCodes []string  `json:"recovery_codes"`
}

// LoginRequest carries the credentials for authentication.
type LoginRequest struct {
	Email          string `json:"email"`
	MasterPassword string `json:"master_password"`
}

// ChangeMasterPasswordRequest rotates the master password of the
// authenticated account.
type ChangeMasterPasswordRequest struct {
	OldMasterPassword string `json:"old_master_password"`
	NewMasterPassword string `json:"new_master_password"`
}

// RecoverAccountRequest redeems a recovery code to set a new master
// password without knowing the old one.
type RecoverAccountRequest struct {
	Email             string `json:"email"`
	RecoveryCode      string `json:"recovery_code"`
	NewMasterPassword string `json:"new_master_password"`
}

// CheckRecoveryCodeRequest asks whether a recovery code is still redeemable.
type CheckRecoveryCodeRequest struct {
	RecoveryCode string `json:"recovery_code"`
}

// RecoveryCodesResponse returns a freshly generated batch of plaintext
// recovery codes, shown exactly once.
type RecoveryCodesResponse struct {
	RecoveryCodes []string `json:"recovery_codes"`
}

// RecoveryCodeValidityResponse reports whether a recovery code is still
// redeemable without consuming it.
type RecoveryCodeValidityResponse struct {
	Valid bool `json:"valid"`
}

// AddVaultEntryRequest creates a vault entry. Password is required; at
// least one of WebsiteURL/AppName and one of Username/Email must be set.
type AddVaultEntryRequest struct {
	WebsiteURL *string `json:"website_url,omitempty"`
	AppName    *string `json:"app_name,omitempty"`
	Username   *string `json:"username,omitempty"`
	Email      *string `json:"email,omitempty"`
	Password   string  `json:"password"`
}
