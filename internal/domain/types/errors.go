package types

import "errors"

// Sentinel errors for the error kinds named in the rendezvous service's
// error-handling design. Callers should compare with errors.Is; the HTTP
// server maps these to status codes.
var (
	// ErrInvalidKeyEncoding means a key field was the wrong length or otherwise malformed.
	ErrInvalidKeyEncoding = errors.New("invalid key encoding")

	// ErrSignatureInvalid means an Ed25519 signature failed verification.
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrBundleIncomplete means a pre-key bundle is missing required fields.
	ErrBundleIncomplete = errors.New("bundle incomplete")

	// ErrUnknownIdentity means the relay has no record of the requested identity.
	ErrUnknownIdentity = errors.New("unknown identity")

	// ErrOPKMissing means no one-time pre-key was available to dispense.
	ErrOPKMissing = errors.New("no one-time pre-key available")

	// ErrInvalidCiphertext means an AEAD envelope was too short to contain a nonce.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrUnexpectedVersion means an AEAD envelope's leading version byte was not recognized.
	ErrUnexpectedVersion = errors.New("unexpected envelope version")

	// ErrDecryptFailed means AEAD authentication failed during decryption.
	ErrDecryptFailed = errors.New("decryption failed")

	// ErrRegistrationConflict means an identity name is already registered under a different identity key.
	ErrRegistrationConflict = errors.New("registration conflict: identity key does not match existing registration")

	// ErrStoreUnavailable means a local or remote store could not complete an operation.
	ErrStoreUnavailable = errors.New("store unavailable")
)
