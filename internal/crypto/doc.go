// Package crypto exposes the minimal primitives used throughout rendezvous.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519,
//     ClampX25519PrivateKey, DH)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - Coercion of the long-term Ed25519 identity key into its Montgomery
//     (X25519) form (IdentityKeyToX25519Public, IdentityKeyToX25519Private)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Keys are returned as the fixed-size array types defined in internal/domain
// to avoid accidental reallocations; signatures are plain byte slices. Callers should treat returned secrets as
// sensitive and rely on Wipe when practical to reduce lifetime in memory.
package crypto
