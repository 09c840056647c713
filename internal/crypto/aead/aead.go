// Package aead implements the versioned AEAD envelope carrying X3DH
// initial ciphertexts and all subsequent message ciphertexts.
package aead

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"rendezvous/internal/domain"
)

// version is the single supported envelope format byte.
const version byte = 0x01

const (
	versionLen = 1
	nonceLen   = chacha20poly1305.NonceSize // 12
	headerLen  = versionLen + nonceLen
)

// Encrypt seals plaintext under key, authenticating aad, and returns the
// wire envelope: 0x01 || nonce(12) || ciphertext.
func Encrypt(key []byte, plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("aead: new cipher: %w", err)
	}

	envelope := make([]byte, headerLen, headerLen+len(plaintext)+aead.Overhead())
	envelope[0] = version
	nonce := envelope[versionLen:headerLen]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("aead: generate nonce: %w", err)
	}

	return aead.Seal(envelope, nonce, plaintext, aad), nil
}

// Decrypt opens an envelope produced by Encrypt, authenticating aad.
func Decrypt(key []byte, envelope, aad []byte) ([]byte, error) {
	if len(envelope) < headerLen {
		return nil, fmt.Errorf("aead: %w", domain.ErrInvalidCiphertext)
	}
	if envelope[0] != version {
		return nil, fmt.Errorf("aead: %w: %d", domain.ErrUnexpectedVersion, envelope[0])
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("aead: new cipher: %w", err)
	}

	nonce := envelope[versionLen:headerLen]
	ciphertext := envelope[headerLen:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("aead: %w", domain.ErrDecryptFailed)
	}
	return plaintext, nil
}
