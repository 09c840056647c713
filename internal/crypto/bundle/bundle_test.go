package bundle_test

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"rendezvous/internal/crypto/bundle"
	"rendezvous/internal/domain"
)

func genIK(t *testing.T) (domain.Ed25519Private, domain.Ed25519Public) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	var edPriv domain.Ed25519Private
	var edPub domain.Ed25519Public
	copy(edPriv[:], priv)
	copy(edPub[:], pub)
	return edPriv, edPub
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, pub := genIK(t)
	keys := []domain.X25519Public{{1, 2, 3}, {4, 5, 6}}

	sig := bundle.Sign(priv, keys)
	if err := bundle.Verify(pub, keys, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsTamperedKey(t *testing.T) {
	priv, pub := genIK(t)
	keys := []domain.X25519Public{{1, 2, 3}}
	sig := bundle.Sign(priv, keys)

	keys[0][0] ^= 0xFF
	if err := bundle.Verify(pub, keys, sig); !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("Verify tampered key: err = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerifyRejectsWrongIdentityKey(t *testing.T) {
	priv, _ := genIK(t)
	_, otherPub := genIK(t)
	keys := []domain.X25519Public{{9, 9, 9}}
	sig := bundle.Sign(priv, keys)

	if err := bundle.Verify(otherPub, keys, sig); !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("Verify wrong identity key: err = %v, want ErrSignatureInvalid", err)
	}
}

func TestSignEmptyKeyList(t *testing.T) {
	priv, pub := genIK(t)
	sig := bundle.Sign(priv, nil)
	if err := bundle.Verify(pub, nil, sig); err != nil {
		t.Fatalf("Verify empty list: %v", err)
	}
}
