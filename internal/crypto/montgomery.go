package crypto

import (
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"

	"rendezvous/internal/domain"
)

// IdentityKeyToX25519Public coerces an Ed25519 identity public key to its
// birationally-equivalent Montgomery (X25519) public key, the same
// technique used to let an SSH Ed25519 key agree on an X25519 secret.
func IdentityKeyToX25519Public(pub domain.Ed25519Public) (domain.X25519Public, error) {
	var out domain.X25519Public
	p, err := new(edwards25519.Point).SetBytes(pub.Slice())
	if err != nil {
		return out, fmt.Errorf("montgomery: invalid identity key: %w", err)
	}
	copy(out[:], p.BytesMontgomery())
	return out, nil
}

// IdentityKeyToX25519Private coerces an Ed25519 identity private key to its
// corresponding X25519 scalar. Ed25519 derives its signing scalar from
// SHA-512(seed)[:32] (clamped); using that same half as the X25519 scalar
// yields the point matching IdentityKeyToX25519Public.
func IdentityKeyToX25519Private(priv domain.Ed25519Private) domain.X25519Private {
	seed := priv.Slice()[:32]
	h := sha512.Sum512(seed)
	var out domain.X25519Private
	copy(out[:], h[:curve25519.ScalarSize])
	return out
}
