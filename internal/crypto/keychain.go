// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

const (
	// dekLength is the size of the per-user data-encryption key.
	dekLength = 32

	// recoveryCodeEntropy is the number of random bytes behind one
	// recovery code before base64url encoding.
	recoveryCodeEntropy = 32

	// saltLength is the random salt size used for password hashing.
	saltLength = 16
)

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target.
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewKeyChainService constructs a [KeyChainService] with the Argon2id
// parameters recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewKeyChainService() KeyChainService {
	return &keyChainService{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}
}

// HashMasterPassword implements [KeyChainService]. It reads a fresh 16-byte
// salt from the OS CSPRNG, derives the Argon2id digest, and encodes both
// together with the tuning parameters in PHC format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<b64 salt>$<b64 digest>
//
// Returns an error only if the random salt read fails.
func (k *keyChainService) HashMasterPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, k.argonTime, k.argonMemory, k.argonThreads, k.argonKeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		k.argonMemory,
		k.argonTime,
		k.argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)

	return encoded, nil
}

// VerifyMasterPassword implements [KeyChainService]. It parses the PHC
// string produced by [keyChainService.HashMasterPassword], re-derives the
// digest with the embedded parameters and salt, and compares the two with
// [subtle.ConstantTimeCompare].
//
// Returns [ErrMalformedPasswordHash] if encoded cannot be parsed and
// [ErrIncompatibleHashVersion] if the Argon2 version does not match.
func (k *keyChainService) VerifyMasterPassword(password, encoded string) (bool, error) {
	salt, digest, params, err := decodePasswordHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(digest)))

	return subtle.ConstantTimeCompare(digest, candidate) == 1, nil
}

// DeriveKEK implements [KeyChainService]. It computes SHA-256(secret) and
// returns the 32-byte digest as the key-encryption key.
//
// The derivation is intentionally a single fast hash rather than a
// memory-hard KDF: the wrapped DEK never leaves the server, and the scheme
// matches the system this vault is compatible with.
func (k *keyChainService) DeriveKEK(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// GenerateDEK implements [KeyChainService]. It reads 32 random bytes from
// the OS CSPRNG and returns them as the data-encryption key. Returns an
// error if the random read fails.
func (k *keyChainService) GenerateDEK() ([]byte, error) {
	dek := make([]byte, dekLength)
	if _, err := io.ReadFull(rand.Reader, dek); err != nil {
		return nil, err
	}
	return dek, nil
}

// GenerateRecoveryCode implements [KeyChainService]. It reads 32 random
// bytes from the OS CSPRNG and encodes them with base64url so the code is
// safe to display and to type back in.
func (k *keyChainService) GenerateRecoveryCode() (string, error) {
	raw := make([]byte, recoveryCodeEntropy)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// GenerateSessionToken implements [KeyChainService]. The token combines a
// UUIDv4 with 16 extra random bytes: the UUID keeps tokens unique even under
// a weak entropy pool, the random suffix makes them unguessable.
func (k *keyChainService) GenerateSessionToken() (string, error) {
	suffix := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, suffix); err != nil {
		return "", err
	}
	return uuid.NewString() + "-" + base64.URLEncoding.EncodeToString(suffix), nil
}

// HashRecoveryCode implements [KeyChainService]. It returns the hex-encoded
// SHA-256 digest of code.
func (k *keyChainService) HashRecoveryCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Encrypt implements [KeyChainService]. It seals plaintext with AES-256-GCM
// under key. A random 12-byte nonce is prepended to the ciphertext so that
// the decryption side can locate it: blob = nonce ‖ ciphertext. The blob is
// returned Base64 (standard encoding) so it is safe to store in text columns
// and to hand to clients as an opaque string.
func (k *keyChainService) Encrypt(plaintext, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

// Decrypt implements [KeyChainService]. It Base64-decodes encoded, splits
// out the nonce, and opens the ciphertext with AES-256-GCM under key.
//
// Every failure mode fails closed:
//   - undecodable Base64 → [ErrDecryptionFailed];
//   - blob shorter than a nonce → [ErrCiphertextTooShort];
//   - authentication-tag mismatch (tamper or wrong key) →
//     [ErrDecryptionFailed].
func (k *keyChainService) Decrypt(encoded string, key []byte) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, ErrCiphertextTooShort
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// An error here almost always means the caller supplied the wrong
		// secret, producing a wrong KEK or DEK.
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

// newGCM builds an AES-GCM AEAD from a 32-byte key.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return gcm, nil
}

// argonParams are the tuning values recovered from a PHC hash string.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

// decodePasswordHash splits a PHC-format Argon2id string into its salt,
// digest, and tuning parameters.
func decodePasswordHash(encoded string) ([]byte, []byte, argonParams, error) {
	var params argonParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, params, ErrMalformedPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, ErrMalformedPasswordHash
	}
	if version != argon2.Version {
		return nil, nil, params, ErrIncompatibleHashVersion
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return nil, nil, params, ErrMalformedPasswordHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, ErrMalformedPasswordHash
	}

	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, ErrMalformedPasswordHash
	}

	return salt, digest, params, nil
}
