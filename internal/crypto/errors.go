package crypto

import "errors"

// Sentinel errors returned by the keychain. Callers should match with
// [errors.Is]; all of them belong to the Crypto error class and are mapped
// to generic messages at the transport boundary.
var (
	// ErrCiphertextTooShort is returned when an encrypted blob is shorter
	// than the GCM nonce and therefore cannot contain any ciphertext.
	ErrCiphertextTooShort = errors.New("ciphertext too short")

	// ErrDecryptionFailed is returned when base64 decoding fails or the GCM
	// authentication tag does not verify. A wrong key and a tampered blob
	// are deliberately indistinguishable.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrMalformedPasswordHash is returned when a stored password hash
	// cannot be parsed as a PHC-format Argon2id string.
	ErrMalformedPasswordHash = errors.New("malformed password hash")

	// ErrIncompatibleHashVersion is returned when a stored password hash was
	// produced by an Argon2 version this build does not implement.
	ErrIncompatibleHashVersion = errors.New("incompatible argon2 version")

	// ErrInvalidDEKLength is returned when an unwrapped DEK does not have
	// the expected 32-byte length. Unreachable if the key lifecycle
	// invariants hold; reported as a typed error rather than a panic.
	ErrInvalidDEKLength = errors.New("invalid DEK length")
)
