package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-vault-keeper/models"
	"github.com/google/uuid"
)

// UserRepository persists vault accounts. Multi-row mutations (signup,
// recovery redemption) run inside a single database transaction so that a
// failure is never observable as partial state.
type UserRepository interface {
	// CreateUserWithRecoveryCodes inserts the user row and its initial
	// recovery-code batch in one transaction. Returns the persisted user
	// with server-assigned timestamps, or ErrEmailAlreadyExists on a
	// unique-constraint violation.
	CreateUserWithRecoveryCodes(ctx context.Context, user models.User, codes []models.RecoveryCode) (models.User, error)

	// FindUserByEmail retrieves an account by its unique email.
	// Returns ErrNoUserWasFound on an empty result set.
	FindUserByEmail(ctx context.Context, email string) (models.User, error)

	// FindUserByID retrieves an account by primary key.
	// Returns ErrNoUserWasFound on an empty result set.
	FindUserByID(ctx context.Context, id uuid.UUID) (models.User, error)

	// UpdateMasterCredentials replaces master_password_hash and
	// encrypted_dek together. A single-row UPDATE is atomic on its own, so
	// no explicit transaction is taken.
	UpdateMasterCredentials(ctx context.Context, userID uuid.UUID, passwordHash, encryptedDEK string) error

	// RecoverMasterCredentials applies a recovery redemption in one
	// transaction: the user's credentials are replaced and the consumed
	// recovery code is marked used. The code update is guarded by
	// `used = FALSE`; a zero-row result aborts the transaction with
	// ErrRecoveryCodeAlreadyUsed so that a concurrently redeemed code can
	// never be consumed twice.
	RecoverMasterCredentials(ctx context.Context, userID, codeID uuid.UUID, passwordHash, encryptedDEK string) error
}

// RecoveryCodeRepository persists single-use recovery codes.
type RecoveryCodeRepository interface {
	// SaveCodes inserts a batch of recovery-code records.
	SaveCodes(ctx context.Context, codes []models.RecoveryCode) error

	// FindByUserAndHash looks a code up by its owner and hex SHA-256 hash.
	// Returns ErrRecoveryCodeNotFound on an empty result set.
	FindByUserAndHash(ctx context.Context, userID uuid.UUID, codeHash string) (models.RecoveryCode, error)

	// CountUnused returns the number of not-yet-redeemed codes of a user.
	CountUnused(ctx context.Context, userID uuid.UUID) (int, error)
}

// VaultEntryPatch is the persistence-level partial update of a vault entry.
// Nil fields are left untouched. Secret fields arrive already encrypted —
// the repository never sees plaintext.
type VaultEntryPatch struct {
	WebsiteURL        *string
	AppName           *string
	EncryptedUsername *string
	EncryptedEmail    *string
	EncryptedPassword *string
}

// VaultEntryRepository persists encrypted vault entries.
type VaultEntryRepository interface {
	// Save inserts a new entry and returns it with server-assigned
	// timestamps.
	Save(ctx context.Context, entry models.VaultEntry) (models.VaultEntry, error)

	// FindByID retrieves one entry scoped to its owner.
	// Returns ErrVaultEntryNotFound on an empty result set.
	FindByID(ctx context.Context, userID, entryID uuid.UUID) (models.VaultEntry, error)

	// ExistsForSite reports whether the user already stores a credential for
	// the given website URL or application name.
	ExistsForSite(ctx context.Context, userID uuid.UUID, websiteURL, appName *string) (bool, error)

	// List returns up to limit entries of a user ordered by created_at
	// descending. When updatedAfter is non-nil, only entries with
	// updated_at strictly greater than it are returned (cursor pagination).
	List(ctx context.Context, userID uuid.UUID, updatedAfter *time.Time, limit uint64) ([]models.VaultEntry, error)

	// Update applies the non-nil fields of patch to one entry and bumps
	// updated_at. Returns ErrVaultEntryNotFound when no row matches.
	Update(ctx context.Context, userID, entryID uuid.UUID, patch VaultEntryPatch) error

	// Delete removes one entry scoped to its owner. Returns
	// ErrVaultEntryNotFound when no row matches.
	Delete(ctx context.Context, userID, entryID uuid.UUID) error
}

// SessionCache is the capability interface over the ephemeral key/value
// store that backs bearer sessions. The production implementation is Redis;
// tests substitute an in-memory fake.
type SessionCache interface {
	// Set stores value under key with the given TTL, overwriting any
	// previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value stored under key, or ErrSessionNotFound if the
	// key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	// Expire resets the TTL of key to a full new window (sliding
	// expiration). Expiring an absent key is not an error.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
