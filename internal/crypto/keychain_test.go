package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestGenerateDEK_LengthAndRandomness(t *testing.T) {
	svc := NewKeyChainService()

	d1, err := svc.GenerateDEK()
	if err != nil {
		t.Fatalf("GenerateDEK error: %v", err)
	}
	d2, err := svc.GenerateDEK()
	if err != nil {
		t.Fatalf("GenerateDEK error: %v", err)
	}

	if len(d1) != 32 {
		t.Fatalf("DEK length = %d, want 32", len(d1))
	}
	if len(d2) != 32 {
		t.Fatalf("DEK length = %d, want 32", len(d2))
	}
	if bytes.Equal(d1, d2) {
		t.Fatalf("expected DEKs to differ, but they are equal")
	}
}

func TestDeriveKEK_DeterministicSHA256(t *testing.T) {
	svc := NewKeyChainService()

	k1 := svc.DeriveKEK("correct horse battery staple")
	k2 := svc.DeriveKEK("correct horse battery staple")

	if len(k1) != 32 {
		t.Fatalf("KEK length = %d, want 32", len(k1))
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("expected KEKs to match for the same secret")
	}

	want := sha256.Sum256([]byte("correct horse battery staple"))
	if !bytes.Equal(k1, want[:]) {
		t.Fatalf("KEK is not SHA-256 of the secret")
	}

	if bytes.Equal(k1, svc.DeriveKEK("other secret")) {
		t.Fatalf("expected different KEKs for different secrets")
	}
}

func TestHashMasterPassword_PHCFormat(t *testing.T) {
	svc := NewKeyChainService()

	encoded, err := svc.HashMasterPassword("master-password")
	if err != nil {
		t.Fatalf("HashMasterPassword error: %v", err)
	}

	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=1,p=4$") {
		t.Fatalf("unexpected PHC prefix: %q", encoded)
	}
	if parts := strings.Split(encoded, "$"); len(parts) != 6 {
		t.Fatalf("PHC segment count = %d, want 6", len(parts))
	}
}

func TestHashMasterPassword_SaltedHashesDiffer(t *testing.T) {
	svc := NewKeyChainService()

	h1, err := svc.HashMasterPassword("master-password")
	if err != nil {
		t.Fatalf("HashMasterPassword error: %v", err)
	}
	h2, err := svc.HashMasterPassword("master-password")
	if err != nil {
		t.Fatalf("HashMasterPassword error: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("expected distinct hashes for the same password (random salt)")
	}
}

func TestVerifyMasterPassword_RoundTrip(t *testing.T) {
	svc := NewKeyChainService()

	encoded, err := svc.HashMasterPassword("master-password")
	if err != nil {
		t.Fatalf("HashMasterPassword error: %v", err)
	}

	ok, err := svc.VerifyMasterPassword("master-password", encoded)
	if err != nil {
		t.Fatalf("VerifyMasterPassword error: %v", err)
	}
	if !ok {
		t.Fatalf("expected correct password to verify")
	}

	ok, err = svc.VerifyMasterPassword("wrong-password", encoded)
	if err != nil {
		t.Fatalf("VerifyMasterPassword error: %v", err)
	}
	if ok {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestVerifyMasterPassword_MalformedHash(t *testing.T) {
	svc := NewKeyChainService()

	cases := []string{
		"",
		"not-a-phc-string",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	}

	for _, encoded := range cases {
		if _, err := svc.VerifyMasterPassword("password", encoded); !errors.Is(err, ErrMalformedPasswordHash) {
			t.Fatalf("VerifyMasterPassword(%q) error = %v, want ErrMalformedPasswordHash", encoded, err)
		}
	}
}

func TestVerifyMasterPassword_IncompatibleVersion(t *testing.T) {
	svc := NewKeyChainService()

	encoded := "$argon2id$v=18$m=65536,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"
	if _, err := svc.VerifyMasterPassword("password", encoded); !errors.Is(err, ErrIncompatibleHashVersion) {
		t.Fatalf("VerifyMasterPassword error = %v, want ErrIncompatibleHashVersion", err)
	}
}

func TestGenerateRecoveryCode_EncodingAndRandomness(t *testing.T) {
	svc := NewKeyChainService()

	c1, err := svc.GenerateRecoveryCode()
	if err != nil {
		t.Fatalf("GenerateRecoveryCode error: %v", err)
	}
	c2, err := svc.GenerateRecoveryCode()
	if err != nil {
		t.Fatalf("GenerateRecoveryCode error: %v", err)
	}

	if c1 == c2 {
		t.Fatalf("expected recovery codes to differ")
	}

	raw, err := base64.URLEncoding.DecodeString(c1)
	if err != nil {
		t.Fatalf("recovery code is not base64url: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("recovery code entropy = %d bytes, want 32", len(raw))
	}
}

func TestHashRecoveryCode_Deterministic(t *testing.T) {
	svc := NewKeyChainService()

	h1 := svc.HashRecoveryCode("some-code")
	h2 := svc.HashRecoveryCode("some-code")

	if h1 != h2 {
		t.Fatalf("expected recovery code hash to be deterministic")
	}
	if len(h1) != 64 {
		t.Fatalf("recovery code hash length = %d, want 64 hex chars", len(h1))
	}
	if h1 == svc.HashRecoveryCode("other-code") {
		t.Fatalf("expected different hashes for different codes")
	}
}

func TestGenerateSessionToken_UniqueAndShaped(t *testing.T) {
	svc := NewKeyChainService()

	t1, err := svc.GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}
	t2, err := svc.GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}

	if t1 == t2 {
		t.Fatalf("expected session tokens to differ")
	}
	// uuid4 carries four hyphens, the random suffix adds a fifth.
	if strings.Count(t1, "-") < 5 {
		t.Fatalf("unexpected session token shape: %q", t1)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	svc := NewKeyChainService()
	key := bytes.Repeat([]byte{0x2A}, 32)

	encoded, err := svc.Encrypt([]byte("vault secret"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	plain, err := svc.Decrypt(encoded, key)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if string(plain) != "vault secret" {
		t.Fatalf("round-trip mismatch: got %q", plain)
	}
}

func TestEncrypt_NonceRandomness(t *testing.T) {
	svc := NewKeyChainService()
	key := bytes.Repeat([]byte{0x2A}, 32)

	e1, err := svc.Encrypt([]byte("same plaintext"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	e2, err := svc.Encrypt([]byte("same plaintext"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	if e1 == e2 {
		t.Fatalf("expected different blobs for two encryptions of the same plaintext")
	}
}

func TestDecrypt_WrongKeyFailsClosed(t *testing.T) {
	svc := NewKeyChainService()

	encoded, err := svc.Encrypt([]byte("vault secret"), bytes.Repeat([]byte{0x01}, 32))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	if _, err := svc.Decrypt(encoded, bytes.Repeat([]byte{0x02}, 32)); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("Decrypt error = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecrypt_TamperedBlobFailsClosed(t *testing.T) {
	svc := NewKeyChainService()
	key := bytes.Repeat([]byte{0x2A}, 32)

	encoded, err := svc.Encrypt([]byte("vault secret"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("blob is not base64: %v", err)
	}
	blob[len(blob)-1] ^= 0xFF
	tampered := base64.StdEncoding.EncodeToString(blob)

	if _, err := svc.Decrypt(tampered, key); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("Decrypt error = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecrypt_NotBase64(t *testing.T) {
	svc := NewKeyChainService()

	if _, err := svc.Decrypt("%%% not base64 %%%", bytes.Repeat([]byte{0x2A}, 32)); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("Decrypt error = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecrypt_CiphertextTooShort(t *testing.T) {
	svc := NewKeyChainService()

	short := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03})
	if _, err := svc.Decrypt(short, bytes.Repeat([]byte{0x2A}, 32)); !errors.Is(err, ErrCiphertextTooShort) {
		t.Fatalf("Decrypt error = %v, want ErrCiphertextTooShort", err)
	}
}
