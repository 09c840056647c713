// Package message sends and receives encrypted messages.
//
// There is no Double Ratchet: each send runs X3DH afresh against the
// recipient's current pre-key bundle, seals one AEAD envelope under the
// derived key, and discards the key. Receiving mirrors the handshake using
// the pre-keys named in the envelope and the RelayClient's message stream.
package message
