// Package identity manages creation, encryption and loading of the local identity.
//
// The identity is a single long-term Ed25519 key pair; its X25519 form for
// X3DH is coerced on demand rather than stored separately. Persistence goes
// through the domain.IdentityStore, encrypted at rest under a passphrase.
package identity
