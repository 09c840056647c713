package domain

import (
	interfaces "rendezvous/internal/domain/interfaces"
	types "rendezvous/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Username                    = types.Username
	Fingerprint                 = types.Fingerprint
	SignedPreKeyID              = types.SignedPreKeyID
	OneTimePreKeyID             = types.OneTimePreKeyID
	Identity                    = types.Identity
	OneTimePreKeyPair           = types.OneTimePreKeyPair
	OneTimePreKeyPublic         = types.OneTimePreKeyPublic
	RegisterPreKeyBundleRequest = types.RegisterPreKeyBundleRequest
	PreKeyBundle                = types.PreKeyBundle
	InitialMessage              = types.InitialMessage
	Envelope                    = types.Envelope
	DecryptedMessage            = types.DecryptedMessage
	Session                     = types.Session
	X25519Public                = types.X25519Public
	X25519Private               = types.X25519Private
	Ed25519Public               = types.Ed25519Public
	Ed25519Private              = types.Ed25519Private
	BundleSignature             = types.BundleSignature
)

// Error sentinels, re-exported for callers that only import domain.
var (
	ErrInvalidKeyEncoding   = types.ErrInvalidKeyEncoding
	ErrSignatureInvalid     = types.ErrSignatureInvalid
	ErrBundleIncomplete     = types.ErrBundleIncomplete
	ErrUnknownIdentity      = types.ErrUnknownIdentity
	ErrOPKMissing           = types.ErrOPKMissing
	ErrInvalidCiphertext    = types.ErrInvalidCiphertext
	ErrUnexpectedVersion    = types.ErrUnexpectedVersion
	ErrDecryptFailed        = types.ErrDecryptFailed
	ErrRegistrationConflict = types.ErrRegistrationConflict
	ErrStoreUnavailable     = types.ErrStoreUnavailable
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService   = interfaces.IdentityService
	PreKeyService     = interfaces.PreKeyService
	SessionService    = interfaces.SessionService
	MessageService    = interfaces.MessageService
	RelayClient       = interfaces.RelayClient
	IdentityStore     = interfaces.IdentityStore
	PreKeyStore       = interfaces.PreKeyStore
	PreKeyBundleStore = interfaces.PreKeyBundleStore
	SessionStore      = interfaces.SessionStore
)
