package validators

import (
	"context"

	"github.com/MKhiriev/go-vault-keeper/models"
)

// Field name constants used to specify which fields should be validated.
// These constants are passed to Validate to restrict validation to a subset
// of fields (field-level scoping).
const (
	// FieldPassword targets the secret password of a vault entry.
	FieldPassword = "password"

	// FieldSiteIdentifier targets the website URL / app name pair; at least
	// one of the two must be present.
	FieldSiteIdentifier = "site_identifier"

	// FieldLoginIdentifier targets the username / email pair; at least one
	// of the two must be present.
	FieldLoginIdentifier = "login_identifier"
)

// VaultEntryValidator implements the Validator interface for the vault-entry
// request models: AddVaultEntryRequest and VaultEntryUpdate.
//
// It accepts both value and pointer forms of each model and allows optional
// field-level scoping via variadic field name arguments.
type VaultEntryValidator struct {
}

// NewVaultEntryValidator constructs a new VaultEntryValidator
// and returns it as the Validator interface.
func NewVaultEntryValidator() Validator {
	return &VaultEntryValidator{}
}

// Validate dispatches validation to the appropriate type-specific method
// based on the dynamic type of obj.
//
// Supported types:
//   - models.AddVaultEntryRequest / *models.AddVaultEntryRequest
//   - models.VaultEntryUpdate / *models.VaultEntryUpdate
//
// Returns ErrUnsupportedType if obj does not match any known model.
func (v *VaultEntryValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.AddVaultEntryRequest:
		return v.validateAddRequest(ctx, value, fields...)
	case *models.AddVaultEntryRequest:
		return v.validateAddRequest(ctx, *value, fields...)

	case models.VaultEntryUpdate:
		return v.validateUpdate(ctx, value, fields...)
	case *models.VaultEntryUpdate:
		return v.validateUpdate(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validateAddRequest validates a new-entry request.
//
// Default validated fields (when none specified):
// Password, SiteIdentifier, LoginIdentifier.
func (v *VaultEntryValidator) validateAddRequest(ctx context.Context, request models.AddVaultEntryRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldPassword, FieldSiteIdentifier, FieldLoginIdentifier}
	}

	for _, f := range fields {
		switch f {
		case FieldPassword:
			if request.Password == "" {
				return ErrMissingPassword
			}
		case FieldSiteIdentifier:
			if request.WebsiteURL == nil && request.AppName == nil {
				return ErrMissingSiteIdentifier
			}
		case FieldLoginIdentifier:
			if request.Username == nil && request.Email == nil {
				return ErrMissingLoginIdentifier
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateUpdate validates a partial update descriptor.
//
// Non-nil fields must carry non-empty values (partial update semantics: nil
// means "do not touch"), and at least one field must be set at all —
// an empty update is a request for nothing.
func (v *VaultEntryValidator) validateUpdate(ctx context.Context, update models.VaultEntryUpdate, fields ...string) error {
	if update.Empty() {
		return ErrNoFieldsToUpdate
	}

	for _, value := range []*string{update.WebsiteURL, update.AppName, update.Username, update.Email, update.Password} {
		if value != nil && *value == "" {
			return ErrEmptyFieldValue
		}
	}

	return nil
}
