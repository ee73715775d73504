package models

import (
	"time"

	"github.com/google/uuid"
)

// VaultEntry is a single stored login. Secret fields are encrypted with the
// owner's DEK, each with its own random nonce, so re-encrypting one field
// never requires touching the others. Optional fields that were never
// supplied stay NULL — they are not stored as encrypted empty strings.
type VaultEntry struct {
	// ID is the unique identifier of the entry.
	ID uuid.UUID `json:"id"`

	// UserID references the owning account.
	UserID uuid.UUID `json:"user_id"`

	// WebsiteURL is the plaintext site the credential belongs to.
	// At least one of WebsiteURL/AppName is present.
	WebsiteURL *string `json:"website_url,omitempty"`

	// AppName is the plaintext application the credential belongs to.
	AppName *string `json:"app_name,omitempty"`

	// EncryptedUsername is the DEK-encrypted username, when supplied.
	EncryptedUsername *string `json:"-"`

	// EncryptedEmail is the DEK-encrypted email, when supplied.
	EncryptedEmail *string `json:"-"`

	// EncryptedPassword is the DEK-encrypted password. Always present.
	EncryptedPassword string `json:"-"`

	// CreatedAt is the timestamp when the entry was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last modification. It also drives
	// the encrypted pagination cursor.
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the VaultEntry model.
func (v VaultEntry) TableName() string {
	return "vault_entries"
}

// VaultEntryUpdate describes a partial update of a vault entry. Nil fields
// are left untouched; non-nil fields are applied as point mutations. Secret
// fields hold plaintext here and are encrypted by the service before the
// update statement is built.
type VaultEntryUpdate struct {
	WebsiteURL *string `json:"website_url,omitempty"`
	AppName    *string `json:"app_name,omitempty"`
	Username   *string `json:"username,omitempty"`
	Email      *string `json:"email,omitempty"`
	Password   *string `json:"password,omitempty"`
}

// Empty reports whether the update carries no field changes at all.
func (u VaultEntryUpdate) Empty() bool {
	return u.WebsiteURL == nil && u.AppName == nil &&
		u.Username == nil && u.Email == nil && u.Password == nil
}

// DecryptedVaultEntry is a vault entry with its secret fields decrypted for
// the response path. It never crosses a persistence boundary.
type DecryptedVaultEntry struct {
	ID         uuid.UUID `json:"id"`
	WebsiteURL *string   `json:"website_url,omitempty"`
	AppName    *string   `json:"app_name,omitempty"`
	Username   *string   `json:"username,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Password   string    `json:"password"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// VaultEntryPage is one page of decrypted vault entries together with the
// opaque cursor for the next page. An empty NextPageToken means the listing
// is exhausted.
type VaultEntryPage struct {
	Entries       []DecryptedVaultEntry `json:"entries"`
	NextPageToken string                `json:"next_page_token,omitempty"`
}
