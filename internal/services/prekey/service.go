package prekey

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"rendezvous/internal/crypto"
	"rendezvous/internal/crypto/bundle"
	"rendezvous/internal/domain"
)

// Service mints pre-keys and registers them with the relay.
type Service struct {
	idStore     domain.IdentityStore
	prekeyStore domain.PreKeyStore
	bundleStore domain.PreKeyBundleStore
	relayClient domain.RelayClient
}

// New constructs a pre-key Service with the given stores and relay client.
func New(
	idStore domain.IdentityStore,
	prekeyStore domain.PreKeyStore,
	bundleStore domain.PreKeyBundleStore,
	relayClient domain.RelayClient,
) *Service {
	return &Service{
		idStore:     idStore,
		prekeyStore: prekeyStore,
		bundleStore: bundleStore,
		relayClient: relayClient,
	}
}

// GenerateAndRegister mints a new signed pre-key and count one-time
// pre-keys, signs the signed pre-key and the one-time pre-key pool as two
// separate bundle transcripts, and registers the batch with the relay.
func (s *Service) GenerateAndRegister(
	ctx context.Context,
	passphrase string,
	username domain.Username,
	count int,
) error {
	if count < 0 {
		return fmt.Errorf("prekey: negative one-time pre-key count %d", count)
	}

	id, err := s.idStore.LoadIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("prekey: load identity: %w", err)
	}

	spkPriv, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		return fmt.Errorf("prekey: generate signed pre-key: %w", err)
	}
	spkID := domain.SignedPreKeyID(uuid.NewString())
	sig := bundle.Sign(id.IdentityKeyPriv, []domain.X25519Public{spkPub})

	if err := s.prekeyStore.SaveSignedPreKey(spkID, spkPriv, spkPub, sig); err != nil {
		return fmt.Errorf("prekey: save signed pre-key: %w", err)
	}
	if err := s.prekeyStore.SetCurrentSignedPreKeyID(spkID); err != nil {
		return fmt.Errorf("prekey: set current signed pre-key: %w", err)
	}

	pairs := make([]domain.OneTimePreKeyPair, 0, count)
	for i := 0; i < count; i++ {
		opkPriv, opkPub, err := crypto.GenerateX25519()
		if err != nil {
			return fmt.Errorf("prekey: generate one-time pre-key: %w", err)
		}
		pairs = append(pairs, domain.OneTimePreKeyPair{
			ID:   domain.OneTimePreKeyID(uuid.NewString()),
			Priv: opkPriv,
			Pub:  opkPub,
		})
	}
	if len(pairs) > 0 {
		if err := s.prekeyStore.SaveOneTimePreKeys(pairs); err != nil {
			return fmt.Errorf("prekey: save one-time pre-keys: %w", err)
		}
	}

	publics, err := s.prekeyStore.ListOneTimePreKeyPublics()
	if err != nil {
		return fmt.Errorf("prekey: list one-time pre-keys: %w", err)
	}

	opkKeys := make([]domain.X25519Public, len(publics))
	for i, p := range publics {
		opkKeys[i] = p.Pub
	}
	opkSig := bundle.Sign(id.IdentityKeyPriv, opkKeys)

	req := domain.RegisterPreKeyBundleRequest{
		Username:                username,
		IdentityKey:             id.IdentityKeyPub,
		SignedPreKeyID:          spkID,
		SignedPreKey:            spkPub,
		SignedPreKeySignature:   sig,
		OneTimePreKeys:          publics,
		OneTimePreKeysSignature: opkSig,
	}
	if err := s.relayClient.RegisterPreKeyBundle(ctx, req); err != nil {
		return fmt.Errorf("prekey: register bundle: %w", err)
	}
	return s.bundleStore.SaveRegisteredBundle(req)
}

// Compile-time assertion that Service implements domain.PreKeyService.
var _ domain.PreKeyService = (*Service)(nil)
