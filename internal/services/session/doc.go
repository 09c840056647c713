// Package session tracks trust-on-first-use pins of peer identity keys.
//
// InitiateSession fetches and verifies a peer's current pre-key bundle and
// pins its identity key; later calls flag a mismatch instead of silently
// trusting a changed key. There is no persisted symmetric session key:
// each message runs its own X3DH handshake.
package session
