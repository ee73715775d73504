package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrMissingPassword        = errors.New("password is required")
	ErrMissingSiteIdentifier  = errors.New("website url or app name is required")
	ErrMissingLoginIdentifier = errors.New("username or email is required")
	ErrEmptyFieldValue        = errors.New("field value cannot be empty")
	ErrNoFieldsToUpdate       = errors.New("at least one field must be provided for update")
)
