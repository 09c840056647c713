// Package x3dh implements the X3DH key agreement used to establish a
// one-shot session key for a single message.
//
// # Overview
//
// X3DH lets an initiator derive a shared 32-byte root key with a responder
// who has published a pre-key bundle, without either party being online at
// the same time. The bundle contains:
//   - Identity key (Ed25519, coerced to X25519 for the DH steps)
//   - Signed pre-key (X25519) and its Ed25519 signature
//   - At most one one-time pre-key (X25519), already reserved by the relay
//
// There is no Double Ratchet in this implementation: the derived root key
// is used to seal exactly one AEAD envelope and then discarded. Every
// SendMessage call runs X3DH afresh.
//
// # Flows
//
// Initiator (InitiateSend):
//  1. Verify the bundle's signed pre-key signature.
//  2. Generate an ephemeral X25519 key pair.
//  3. Compute DH1..DH3 (DH4 if an OPK was dispensed).
//  4. HKDF over the concatenated DH transcript to produce the root key.
//  5. Return the root key and an InitialMessage naming the pre-keys used.
//
// Responder (InitiateRecv):
//  1. The caller reads the InitialMessage (sender IK, ephemeral EK, SPK/OPK ids),
//     looks up the named signed pre-key and, if named, consumes the one-time
//     pre-key, then passes the secret halves in.
//  2. Compute the mirrored DH set and HKDF to the identical root key.
//
// # Security notes
//
// Only public material is sent over the wire. The one-time pre-key, when
// present, is deleted by the relay the instant it's dispensed so DH4
// contributes forward secrecy against a later-compromised signed pre-key.
package x3dh
