package aead_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"rendezvous/internal/crypto/aead"
	"rendezvous/internal/domain"
)

func randKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := randKey(t)
	plaintext := []byte("the quick brown fox")
	aad := []byte("associated data")

	envelope, err := aead.Encrypt(key, plaintext, aad)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if envelope[0] != 0x01 {
		t.Fatalf("version byte = %d, want 1", envelope[0])
	}
	if len(envelope) != 1+12+len(plaintext)+16 {
		t.Fatalf("envelope length = %d, want %d", len(envelope), 1+12+len(plaintext)+16)
	}

	got, err := aead.Decrypt(key, envelope, aad)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("Decrypt = %q, want %q", got, plaintext)
	}
}

func TestDecryptWrongAAD(t *testing.T) {
	key := randKey(t)
	envelope, err := aead.Encrypt(key, []byte("hello"), []byte("aad-a"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := aead.Decrypt(key, envelope, []byte("aad-b")); !errors.Is(err, domain.ErrDecryptFailed) {
		t.Fatalf("Decrypt with wrong aad: err = %v, want ErrDecryptFailed", err)
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	key := randKey(t)
	envelope, err := aead.Encrypt(key, []byte("hello"), nil)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	envelope[len(envelope)-1] ^= 0xFF
	if _, err := aead.Decrypt(key, envelope, nil); !errors.Is(err, domain.ErrDecryptFailed) {
		t.Fatalf("Decrypt tampered: err = %v, want ErrDecryptFailed", err)
	}
}

func TestDecryptTooShort(t *testing.T) {
	key := randKey(t)
	if _, err := aead.Decrypt(key, []byte{0x01, 0x02, 0x03}, nil); !errors.Is(err, domain.ErrInvalidCiphertext) {
		t.Fatalf("Decrypt short envelope: err = %v, want ErrInvalidCiphertext", err)
	}
}

func TestDecryptUnexpectedVersion(t *testing.T) {
	key := randKey(t)
	envelope, err := aead.Encrypt(key, []byte("hello"), nil)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	envelope[0] = 0x02
	if _, err := aead.Decrypt(key, envelope, nil); !errors.Is(err, domain.ErrUnexpectedVersion) {
		t.Fatalf("Decrypt bad version: err = %v, want ErrUnexpectedVersion", err)
	}
}

func TestEncryptNoncesAreDistinct(t *testing.T) {
	key := randKey(t)
	first, err := aead.Encrypt(key, []byte("same plaintext"), nil)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	second, err := aead.Encrypt(key, []byte("same plaintext"), nil)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatalf("two encryptions of the same plaintext produced identical envelopes")
	}
}
