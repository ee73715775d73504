package models

import "github.com/google/uuid"

// Session is the payload bound to a bearer token in the ephemeral cache for
// the duration of a login. It is the only place where the plaintext DEK
// exists outside a request's stack. The JSON form is an internal contract
// between the session service's producers (signup, login, recovery) and its
// consumer (authenticate) — it is never exposed to clients.
type Session struct {
	// UserID identifies the authenticated account.
	UserID uuid.UUID `json:"id"`

	// Email is the account's login identifier, cached to avoid a database
	// round-trip on every authenticated request.
	Email string `json:"email"`

	// DEK is the user's plaintext data-encryption key (32 bytes).
	// Serialized as base64 by encoding/json.
	DEK []byte `json:"dek"`
}
