// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

// Envelope operations: the DEK encrypts vault data, and is itself protected
// by one or more KEKs derived from secrets the user can present (master
// password, recovery codes). Rotating a secret re-wraps the DEK without
// re-encrypting any vault data.

// WrapDEK implements [KeyChainService]. It encrypts dek under the KEK
// derived from secret. Returns [ErrInvalidDEKLength] if dek is not 32 bytes.
func (k *keyChainService) WrapDEK(dek []byte, secret string) (string, error) {
	if len(dek) != dekLength {
		return "", ErrInvalidDEKLength
	}

	return k.Encrypt(dek, k.DeriveKEK(secret))
}

// UnwrapDEK implements [KeyChainService]. It decrypts a wrapped DEK blob
// using the KEK derived from secret. A wrong secret surfaces as
// [ErrDecryptionFailed]; a well-authenticated blob of the wrong size
// surfaces as [ErrInvalidDEKLength] — the latter indicates corrupted key
// material rather than a bad credential.
func (k *keyChainService) UnwrapDEK(wrapped, secret string) ([]byte, error) {
	dek, err := k.Decrypt(wrapped, k.DeriveKEK(secret))
	if err != nil {
		return nil, err
	}

	if len(dek) != dekLength {
		return nil, ErrInvalidDEKLength
	}

	return dek, nil
}
