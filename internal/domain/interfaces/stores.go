package interfaces

import domaintypes "rendezvous/internal/domain/types"

// IdentityStore persists your long-term identity key, encrypted at rest.
type IdentityStore interface {
	SaveIdentity(passphrase string, id domaintypes.Identity) error
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
}

// PreKeyStore manages signed and one-time pre-keys on disk.
type PreKeyStore interface {
	// SaveSignedPreKey stores a freshly-minted signed pre-key.
	SaveSignedPreKey(
		id domaintypes.SignedPreKeyID,
		priv domaintypes.X25519Private,
		pub domaintypes.X25519Public,
		sig domaintypes.BundleSignature,
	) error
	LoadSignedPreKey(
		id domaintypes.SignedPreKeyID,
	) (
		priv domaintypes.X25519Private,
		pub domaintypes.X25519Public,
		sig domaintypes.BundleSignature,
		ok bool,
		err error,
	)

	// SaveOneTimePreKeys appends a freshly-minted batch to the local pool.
	SaveOneTimePreKeys(pairs []domaintypes.OneTimePreKeyPair) error
	// ConsumeAndWipeOneTimePreKey atomically removes and returns the named
	// one-time pre-key, deleting it from the backing store so it can never
	// be dispensed twice (P7).
	ConsumeAndWipeOneTimePreKey(id domaintypes.OneTimePreKeyID) (
		priv domaintypes.X25519Private,
		pub domaintypes.X25519Public,
		ok bool,
		err error,
	)
	ListOneTimePreKeyPublics() ([]domaintypes.OneTimePreKeyPublic, error)

	// Current signed pre-key selection
	SetCurrentSignedPreKeyID(id domaintypes.SignedPreKeyID) error
	CurrentSignedPreKeyID() (domaintypes.SignedPreKeyID, bool, error)
}

// PreKeyBundleStore caches the last bundle request you registered, for
// offline inspection.
type PreKeyBundleStore interface {
	SaveRegisteredBundle(bundle domaintypes.RegisterPreKeyBundleRequest) error
	LoadRegisteredBundle(username domaintypes.Username) (domaintypes.RegisterPreKeyBundleRequest, bool, error)
}

// SessionStore persists trust-on-first-use peer identity pins.
type SessionStore interface {
	SaveSession(peer domaintypes.Username, session domaintypes.Session) error
	LoadSession(peer domaintypes.Username) (domaintypes.Session, bool, error)
}
