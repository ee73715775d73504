package crypto

// KeyChainService owns every cryptographic primitive of the vault. It knows
// nothing about the network, the database, or users — its only job is to
// derive, protect, and apply keys.
//
// Key scheme:
//
//	DEK     = GenerateDEK()                      random, one per account
//	KEK     = DeriveKEK(secret)                  from password or recovery code
//	wrapped = Encrypt(DEK, KEK)                  stored on users/recovery_codes
//	field   = Encrypt(plaintext, DEK)            stored on vault_entries
//
// The same Encrypt/Decrypt pair covers DEK wrapping, vault fields, and the
// pagination cursor — only the supplied key differs.
type KeyChainService interface {
	// HashMasterPassword hashes a master password with Argon2id using a
	// fresh random salt. The returned PHC-format string embeds all
	// parameters, so verification is self-contained.
	HashMasterPassword(password string) (string, error)

	// VerifyMasterPassword re-derives the hash with the parameters and salt
	// embedded in encoded and compares in constant time. A malformed encoded
	// value yields ErrMalformedPasswordHash, never a panic.
	VerifyMasterPassword(password, encoded string) (bool, error)

	// DeriveKEK derives the 32-byte key-encryption key from a secret string
	// (master password or recovery code). Deterministic: equal secrets give
	// equal keys. The KEK is recomputed on demand and never persisted.
	DeriveKEK(secret string) []byte

	// GenerateDEK returns a fresh random 32-byte data-encryption key.
	GenerateDEK() ([]byte, error)

	// GenerateRecoveryCode returns a base64url-encoded string derived from
	// 32 random bytes.
	GenerateRecoveryCode() (string, error)

	// GenerateSessionToken returns a random opaque bearer token.
	GenerateSessionToken() (string, error)

	// HashRecoveryCode returns the hex-encoded SHA-256 of code. Unsalted:
	// the hash is a lookup key, guessing resistance comes from the code's
	// own entropy.
	HashRecoveryCode(code string) string

	// Encrypt seals plaintext with AES-256-GCM under key. A fresh random
	// 12-byte nonce is prepended to the ciphertext and the whole blob is
	// base64-encoded: base64(nonce || ciphertext).
	Encrypt(plaintext, key []byte) (string, error)

	// Decrypt reverses Encrypt. It fails closed with ErrCiphertextTooShort
	// or ErrDecryptionFailed if the blob is truncated, tampered with, or
	// sealed under a different key.
	Decrypt(encoded string, key []byte) ([]byte, error)

	// WrapDEK encrypts dek under the KEK derived from secret.
	WrapDEK(dek []byte, secret string) (string, error)

	// UnwrapDEK decrypts a wrapped DEK using the KEK derived from secret.
	// A wrong secret is indistinguishable from tampering: both surface as
	// ErrDecryptionFailed.
	UnwrapDEK(wrapped, secret string) ([]byte, error)
}
