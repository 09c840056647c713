package identity

import (
	"rendezvous/internal/crypto"
	"rendezvous/internal/domain"
)

// Service creates, persists, and inspects the local long-term identity key.
type Service struct {
	idStore domain.IdentityStore
}

// New constructs an identity Service backed by idStore.
func New(idStore domain.IdentityStore) *Service {
	return &Service{idStore: idStore}
}

// GenerateIdentity mints a fresh Ed25519 identity key pair, encrypts and
// persists it under passphrase, and returns it alongside its fingerprint.
func (s *Service) GenerateIdentity(passphrase string) (domain.Identity, domain.Fingerprint, error) {
	priv, pub, err := crypto.GenerateEd25519()
	if err != nil {
		return domain.Identity{}, "", err
	}
	id := domain.Identity{IdentityKeyPub: pub, IdentityKeyPriv: priv}

	if err := s.idStore.SaveIdentity(passphrase, id); err != nil {
		return domain.Identity{}, "", err
	}
	return id, domain.Fingerprint(crypto.Fingerprint(pub.Slice())), nil
}

// LoadIdentity decrypts and returns the persisted identity.
func (s *Service) LoadIdentity(passphrase string) (domain.Identity, error) {
	return s.idStore.LoadIdentity(passphrase)
}

// FingerprintIdentity returns the fingerprint of the persisted identity key
// without exposing the private half.
func (s *Service) FingerprintIdentity(passphrase string) (domain.Fingerprint, error) {
	id, err := s.idStore.LoadIdentity(passphrase)
	if err != nil {
		return "", err
	}
	return domain.Fingerprint(crypto.Fingerprint(id.IdentityKeyPub.Slice())), nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
