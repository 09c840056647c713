// Package bundle signs and verifies the ordered list of X25519 keys a
// client publishes alongside its identity key.
package bundle

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"rendezvous/internal/crypto"
	"rendezvous/internal/domain"
)

// transcript hashes the ordered key list with BLAKE2b-512:
// be_u64(len(keys)) || keys[0] || ... || keys[n-1].
func transcript(keys []domain.X25519Public) []byte {
	buf := make([]byte, 8, 8+32*len(keys))
	binary.BigEndian.PutUint64(buf, uint64(len(keys)))
	for _, k := range keys {
		buf = append(buf, k.Slice()...)
	}
	sum := blake2b.Sum512(buf)
	return sum[:]
}

// Sign signs the ordered key list with ik, returning a BundleSignature.
// It is used both for the single current signed pre-key (a one-element
// list) and for the whole one-time pre-key pool (possibly empty).
func Sign(ik domain.Ed25519Private, keys []domain.X25519Public) domain.BundleSignature {
	sig := crypto.SignEd25519(ik, transcript(keys))
	var out domain.BundleSignature
	copy(out[:], sig)
	return out
}

// Verify checks that sig is a valid signature by ik over keys.
func Verify(ik domain.Ed25519Public, keys []domain.X25519Public, sig domain.BundleSignature) error {
	if !crypto.VerifyEd25519(ik, transcript(keys), sig.Slice()) {
		return fmt.Errorf("bundle: %w", domain.ErrSignatureInvalid)
	}
	return nil
}
