package session

import (
	"context"
	"fmt"

	"rendezvous/internal/crypto/bundle"
	"rendezvous/internal/domain"
)

// Service fetches a peer's current pre-key bundle, verifies its signed
// pre-key, and pins the peer's identity key on trust-on-first-use.
//
// There is no long-lived session key here: each SendMessage fetches the
// peer's current bundle and runs X3DH afresh against it, after checking the
// bundle's identity key against the pin. Session exists purely to detect an identity key change for a peer you've
// already talked to.
type Service struct {
	sessionStore domain.SessionStore
	relayClient  domain.RelayClient
	now          func() int64
}

// New constructs a session Service with the given store and relay client.
func New(sessionStore domain.SessionStore, relayClient domain.RelayClient, now func() int64) *Service {
	return &Service{sessionStore: sessionStore, relayClient: relayClient, now: now}
}

// ErrIdentityKeyChanged is returned when a peer's identity key no longer
// matches the one pinned on first contact.
var ErrIdentityKeyChanged = fmt.Errorf("session: peer identity key changed since first contact")

// InitiateSession fetches peer's current pre-key bundle from the relay,
// verifies its signed pre-key signature, and pins or checks the peer's
// identity key against any previously-stored pin.
func (s *Service) InitiateSession(
	ctx context.Context,
	username domain.Username,
	peer domain.Username,
) (domain.Session, error) {
	peerBundle, err := s.relayClient.RequestPreKeys(ctx, peer)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session: request pre-keys for %q: %w", peer, err)
	}
	if err := bundle.Verify(
		peerBundle.IdentityKey,
		[]domain.X25519Public{peerBundle.SignedPreKey},
		peerBundle.SignedPreKeySignature,
	); err != nil {
		return domain.Session{}, fmt.Errorf("session: %w", err)
	}

	existing, found, err := s.sessionStore.LoadSession(peer)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session: load pinned session: %w", err)
	}
	if found && existing.PeerIdentityKey != peerBundle.IdentityKey {
		return domain.Session{}, ErrIdentityKeyChanged
	}

	sess := domain.Session{
		PeerUsername:    peer,
		PeerIdentityKey: peerBundle.IdentityKey,
		FirstSeenUTC:    existing.FirstSeenUTC,
	}
	if !found {
		sess.FirstSeenUTC = s.now()
	}
	if err := s.sessionStore.SaveSession(peer, sess); err != nil {
		return domain.Session{}, fmt.Errorf("session: save pinned session: %w", err)
	}
	return sess, nil
}

// GetSession returns the pinned session for peer, if one is on file.
func (s *Service) GetSession(peer domain.Username) (domain.Session, bool, error) {
	return s.sessionStore.LoadSession(peer)
}

// Compile-time assertion that Service implements domain.SessionService.
var _ domain.SessionService = (*Service)(nil)
