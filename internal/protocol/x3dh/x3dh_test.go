package x3dh_test

import (
	"bytes"
	"testing"

	"rendezvous/internal/crypto"
	"rendezvous/internal/crypto/bundle"
	"rendezvous/internal/domain"
	"rendezvous/internal/protocol/x3dh"
)

func makeIdentity(t *testing.T) domain.Identity {
	t.Helper()
	priv, pub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	return domain.Identity{IdentityKeyPub: pub, IdentityKeyPriv: priv}
}

// signedBundle builds bob's published bundle, signing the current signed
// pre-key with bob's identity key.
func signedBundle(t *testing.T, bob domain.Identity, spkID domain.SignedPreKeyID, spkPub domain.X25519Public, opk *domain.OneTimePreKeyPublic) domain.PreKeyBundle {
	t.Helper()
	sig := bundle.Sign(bob.IdentityKeyPriv, []domain.X25519Public{spkPub})
	return domain.PreKeyBundle{
		Username:              "bob",
		IdentityKey:           bob.IdentityKeyPub,
		SignedPreKeyID:        spkID,
		SignedPreKey:          spkPub,
		SignedPreKeySignature: sig,
		OneTimePreKey:         opk,
	}
}

func TestX3DH_NoOneTimePreKey(t *testing.T) {
	alice := makeIdentity(t)
	bob := makeIdentity(t)

	spkPriv, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	peerBundle := signedBundle(t, bob, "spk-1", spkPub, nil)

	skA, msg, err := x3dh.InitiateSend(alice, peerBundle)
	if err != nil {
		t.Fatalf("InitiateSend: %v", err)
	}
	if msg.SignedPreKeyID != "spk-1" {
		t.Fatalf("want signed pre-key id spk-1, got %q", msg.SignedPreKeyID)
	}
	if msg.OneTimePreKeyID != "" {
		t.Fatalf("want empty one-time pre-key id, got %q", msg.OneTimePreKeyID)
	}

	skB, err := x3dh.InitiateRecv(bob, spkPriv, nil, msg)
	if err != nil {
		t.Fatalf("InitiateRecv: %v", err)
	}
	if !bytes.Equal(skA, skB) {
		t.Fatal("session keys differ without a one-time pre-key")
	}
}

func TestX3DH_WithOneTimePreKey(t *testing.T) {
	alice := makeIdentity(t)
	bob := makeIdentity(t)

	spkPriv, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	opkPriv, opkPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519 (opk): %v", err)
	}
	opk := &domain.OneTimePreKeyPublic{ID: "opk-1", Pub: opkPub}

	peerBundle := signedBundle(t, bob, "spk-1", spkPub, opk)

	skA, msg, err := x3dh.InitiateSend(alice, peerBundle)
	if err != nil {
		t.Fatalf("InitiateSend: %v", err)
	}
	if msg.OneTimePreKeyID != "opk-1" {
		t.Fatalf("want one-time pre-key id opk-1, got %q", msg.OneTimePreKeyID)
	}

	skB, err := x3dh.InitiateRecv(bob, spkPriv, &opkPriv, msg)
	if err != nil {
		t.Fatalf("InitiateRecv: %v", err)
	}
	if !bytes.Equal(skA, skB) {
		t.Fatal("session keys differ with a one-time pre-key")
	}
}

func TestX3DH_DistinctSessionKeysPerMessage(t *testing.T) {
	alice := makeIdentity(t)
	bob := makeIdentity(t)

	spkPriv, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	peerBundle := signedBundle(t, bob, "spk-1", spkPub, nil)

	sk1, msg1, err := x3dh.InitiateSend(alice, peerBundle)
	if err != nil {
		t.Fatalf("InitiateSend (1): %v", err)
	}
	sk2, msg2, err := x3dh.InitiateSend(alice, peerBundle)
	if err != nil {
		t.Fatalf("InitiateSend (2): %v", err)
	}
	if bytes.Equal(sk1, sk2) {
		t.Fatal("two independent handshakes produced the same session key")
	}
	if msg1.EphemeralKey == msg2.EphemeralKey {
		t.Fatal("two independent handshakes reused the same ephemeral key")
	}

	rk1, err := x3dh.InitiateRecv(bob, spkPriv, nil, msg1)
	if err != nil {
		t.Fatalf("InitiateRecv (1): %v", err)
	}
	rk2, err := x3dh.InitiateRecv(bob, spkPriv, nil, msg2)
	if err != nil {
		t.Fatalf("InitiateRecv (2): %v", err)
	}
	if !bytes.Equal(sk1, rk1) || !bytes.Equal(sk2, rk2) {
		t.Fatal("responder derived a mismatched session key for an independent handshake")
	}
}

func TestX3DH_RejectsTamperedSignedPreKeySignature(t *testing.T) {
	alice := makeIdentity(t)
	bob := makeIdentity(t)

	_, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	peerBundle := signedBundle(t, bob, "spk-1", spkPub, nil)
	peerBundle.SignedPreKeySignature[0] ^= 0xFF

	if _, _, err := x3dh.InitiateSend(alice, peerBundle); err == nil {
		t.Fatal("InitiateSend accepted a bundle with a tampered signed pre-key signature")
	}
}

func TestX3DH_AssociatedDataBindsBothIdentities(t *testing.T) {
	alice := makeIdentity(t)
	bob := makeIdentity(t)

	ad1 := x3dh.AssociatedData(alice.IdentityKeyPub, bob.IdentityKeyPub)
	ad2 := x3dh.AssociatedData(bob.IdentityKeyPub, alice.IdentityKeyPub)
	if bytes.Equal(ad1, ad2) {
		t.Fatal("associated data is not sender/recipient order dependent")
	}
	if len(ad1) != 64 {
		t.Fatalf("want 64-byte associated data, got %d", len(ad1))
	}
}
