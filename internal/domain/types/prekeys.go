package types

// OneTimePreKeyPair is the full (private+public) one-time pre-key stored locally.
type OneTimePreKeyPair struct {
	ID   OneTimePreKeyID `json:"id"`
	Priv X25519Private   `json:"priv"`
	Pub  X25519Public    `json:"pub"`
}

// OneTimePreKeyPublic is only the public half (published in a bundle).
type OneTimePreKeyPublic struct {
	ID  OneTimePreKeyID `json:"id"`
	Pub X25519Public    `json:"pub"`
}

// RegisterPreKeyBundleRequest is what a client uploads to the relay. It
// carries a batch of fresh one-time pre-keys in addition to the current
// signed pre-key. The one-time pre-key pool is batch-signed: a single
// signature covers the entire ordered set of public halves, including the
// empty set when a registration publishes none.
type RegisterPreKeyBundleRequest struct {
	Username                Username              `json:"username"`
	IdentityKey             Ed25519Public         `json:"identity_key"`
	SignedPreKeyID          SignedPreKeyID        `json:"signed_pre_key_id"`
	SignedPreKey            X25519Public          `json:"signed_pre_key"`
	SignedPreKeySignature   BundleSignature       `json:"signed_pre_key_signature"`
	OneTimePreKeys          []OneTimePreKeyPublic `json:"one_time_pre_keys,omitempty"`
	OneTimePreKeysSignature BundleSignature       `json:"one_time_pre_keys_signature"`
}

// PreKeyBundle is what the relay hands back to a requester: the recipient's
// long-term identity key, current signed pre-key, and at most one one-time
// pre-key (already removed from the pool by the relay).
type PreKeyBundle struct {
	Username              Username             `json:"username"`
	IdentityKey           Ed25519Public        `json:"identity_key"`
	SignedPreKeyID        SignedPreKeyID       `json:"signed_pre_key_id"`
	SignedPreKey          X25519Public         `json:"signed_pre_key"`
	SignedPreKeySignature BundleSignature      `json:"signed_pre_key_signature"`
	OneTimePreKey         *OneTimePreKeyPublic `json:"one_time_pre_key,omitempty"`
}

// InitialMessage carries the X3DH handshake parameters alongside the first
// AEAD ciphertext of a message. Because there is no Double Ratchet, every
// SendMessage call performs a fresh X3DH agreement and so every Envelope
// carries one of these.
type InitialMessage struct {
	SenderIdentityKey Ed25519Public   `json:"sender_identity_key"`
	EphemeralKey      X25519Public    `json:"ephemeral_key"`
	SignedPreKeyID    SignedPreKeyID  `json:"signed_pre_key_id"`
	OneTimePreKeyID   OneTimePreKeyID `json:"one_time_pre_key_id,omitempty"`
}
