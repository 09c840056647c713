package x3dh

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"rendezvous/internal/crypto"
	"rendezvous/internal/crypto/bundle"
	"rendezvous/internal/domain"
	"rendezvous/internal/util/memzero"
)

// hkdfInfo domain-separates the root key derivation from any other use of
// the same identity/ephemeral key material.
const hkdfInfo = "Brongnal"

// hkdfSalt is 32 zero bytes, as specified.
var hkdfSalt = make([]byte, 32)

// domainSeparator is 32 bytes of 0xFF prepended to the DH transcript before
// HKDF, following the X3DH convention of reserving an all-ones prefix so a
// future curve without a contributory-behavior guarantee can't be
// confused for a valid DH output.
var domainSeparator = func() []byte {
	f := make([]byte, 32)
	for i := range f {
		f[i] = 0xFF
	}
	return f
}()

// InitiateSend runs X3DH as the initiator against peer's current pre-key
// bundle. It returns the derived session key and the InitialMessage to
// attach to the first envelope.
func InitiateSend(
	sender domain.Identity,
	peer domain.PreKeyBundle,
) (sk []byte, msg domain.InitialMessage, err error) {
	if err := verifySignedPreKey(peer); err != nil {
		return nil, msg, err
	}

	senderIKX := crypto.IdentityKeyToX25519Private(sender.IdentityKeyPriv)
	peerIKXPub, err := crypto.IdentityKeyToX25519Public(peer.IdentityKey)
	if err != nil {
		return nil, msg, fmt.Errorf("x3dh: %w", err)
	}

	ekPriv, ekPub, err := crypto.GenerateX25519()
	if err != nil {
		return nil, msg, fmt.Errorf("x3dh: generate ephemeral key: %w", err)
	}

	dh1, err := crypto.DH(senderIKX, peer.SignedPreKey) // DH(IK_A, SPK_B)
	if err != nil {
		return nil, msg, fmt.Errorf("x3dh: dh1: %w", err)
	}
	dh2, err := crypto.DH(ekPriv, peerIKXPub) // DH(EK_A, IK_B)
	if err != nil {
		return nil, msg, fmt.Errorf("x3dh: dh2: %w", err)
	}
	dh3, err := crypto.DH(ekPriv, peer.SignedPreKey) // DH(EK_A, SPK_B)
	if err != nil {
		return nil, msg, fmt.Errorf("x3dh: dh3: %w", err)
	}

	ikm := make([]byte, 0, len(domainSeparator)+4*32)
	ikm = append(ikm, domainSeparator...)
	ikm = append(ikm, dh1[:]...)
	ikm = append(ikm, dh2[:]...)
	ikm = append(ikm, dh3[:]...)

	var oneTimeID domain.OneTimePreKeyID
	if peer.OneTimePreKey != nil {
		dh4, err := crypto.DH(ekPriv, peer.OneTimePreKey.Pub) // DH(EK_A, OPK_B)
		if err != nil {
			return nil, msg, fmt.Errorf("x3dh: dh4: %w", err)
		}
		ikm = append(ikm, dh4[:]...)
		oneTimeID = peer.OneTimePreKey.ID
		memzero.Zero(dh4[:])
	}

	root, err := deriveRootKey(ikm)
	memzero.Zero(ikm)
	memzero.Zero(dh1[:])
	memzero.Zero(dh2[:])
	memzero.Zero(dh3[:])
	if err != nil {
		return nil, msg, err
	}

	return root, domain.InitialMessage{
		SenderIdentityKey: sender.IdentityKeyPub,
		EphemeralKey:      ekPub,
		SignedPreKeyID:    peer.SignedPreKeyID,
		OneTimePreKeyID:   oneTimeID,
	}, nil
}

// InitiateRecv mirrors InitiateSend on the responder side. spkPriv is the
// local secret half of the signed pre-key named in msg; opkPriv, if
// non-nil, is the secret half of the one-time pre-key msg consumed.
func InitiateRecv(
	recipient domain.Identity,
	spkPriv domain.X25519Private,
	opkPriv *domain.X25519Private,
	msg domain.InitialMessage,
) ([]byte, error) {
	recipientIKX := crypto.IdentityKeyToX25519Private(recipient.IdentityKeyPriv)
	senderIKXPub, err := crypto.IdentityKeyToX25519Public(msg.SenderIdentityKey)
	if err != nil {
		return nil, fmt.Errorf("x3dh: %w", err)
	}

	dh1, err := crypto.DH(spkPriv, senderIKXPub) // DH(SPK_B, IK_A)
	if err != nil {
		return nil, fmt.Errorf("x3dh: dh1: %w", err)
	}
	dh2, err := crypto.DH(recipientIKX, msg.EphemeralKey) // DH(IK_B, EK_A)
	if err != nil {
		return nil, fmt.Errorf("x3dh: dh2: %w", err)
	}
	dh3, err := crypto.DH(spkPriv, msg.EphemeralKey) // DH(SPK_B, EK_A)
	if err != nil {
		return nil, fmt.Errorf("x3dh: dh3: %w", err)
	}

	ikm := make([]byte, 0, len(domainSeparator)+4*32)
	ikm = append(ikm, domainSeparator...)
	ikm = append(ikm, dh1[:]...)
	ikm = append(ikm, dh2[:]...)
	ikm = append(ikm, dh3[:]...)

	if opkPriv != nil {
		dh4, err := crypto.DH(*opkPriv, msg.EphemeralKey) // DH(OPK_B, EK_A)
		if err != nil {
			return nil, fmt.Errorf("x3dh: dh4: %w", err)
		}
		ikm = append(ikm, dh4[:]...)
		memzero.Zero(dh4[:])
	}

	root, err := deriveRootKey(ikm)
	memzero.Zero(ikm)
	memzero.Zero(dh1[:])
	memzero.Zero(dh2[:])
	memzero.Zero(dh3[:])
	return root, err
}

// AssociatedData returns the AEAD associated data binding a message's
// ciphertext to both parties' long-term identity keys: IK_sender || IK_recipient.
func AssociatedData(senderIK, recipientIK domain.Ed25519Public) []byte {
	ad := make([]byte, 0, 64)
	ad = append(ad, senderIK.Slice()...)
	ad = append(ad, recipientIK.Slice()...)
	return ad
}

func deriveRootKey(ikm []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, ikm, hkdfSalt, []byte(hkdfInfo))
	root := make([]byte, 32)
	if _, err := io.ReadFull(reader, root); err != nil {
		return nil, fmt.Errorf("x3dh: hkdf: %w", err)
	}
	return root, nil
}

func verifySignedPreKey(peer domain.PreKeyBundle) error {
	if peer.SignedPreKeyID == "" {
		return fmt.Errorf("x3dh: %w", domain.ErrBundleIncomplete)
	}
	return bundle.Verify(
		peer.IdentityKey,
		[]domain.X25519Public{peer.SignedPreKey},
		peer.SignedPreKeySignature,
	)
}
