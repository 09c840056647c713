package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rendezvous/internal/crypto/aead"
	"rendezvous/internal/domain"
	"rendezvous/internal/protocol/x3dh"
	"rendezvous/internal/util/memzero"
)

// drainIdle is how long ReceiveMessage waits for the next queued envelope
// before concluding the relay's backlog for this recipient is drained.
const drainIdle = 200 * time.Millisecond

// ErrNoSession indicates there is no pinned identity for peer; run
// InitiateSession first so a server-supplied identity key change can be
// detected.
var ErrNoSession = errors.New("no pinned session with peer; run InitiateSession first")

// ErrPeerIdentityKeyMismatch indicates the bundle fetched for a send, or
// the identity key embedded in a received envelope, does not match the
// identity key pinned for that peer.
var ErrPeerIdentityKeyMismatch = errors.New("peer identity key does not match pinned session")

// Service sends and receives messages over the relay. There is no Double
// Ratchet: every SendMessage performs an independent X3DH handshake
// against the recipient's current pre-key bundle, seals exactly one AEAD
// envelope under the derived key, and discards the key.
type Service struct {
	idStore      domain.IdentityStore
	prekeyStore  domain.PreKeyStore
	sessionStore domain.SessionStore
	relayClient  domain.RelayClient
}

// New constructs a message Service with the given stores and relay client.
func New(
	idStore domain.IdentityStore,
	prekeyStore domain.PreKeyStore,
	sessionStore domain.SessionStore,
	relayClient domain.RelayClient,
) *Service {
	return &Service{
		idStore:      idStore,
		prekeyStore:  prekeyStore,
		sessionStore: sessionStore,
		relayClient:  relayClient,
	}
}

// SendMessage fetches the recipient's current pre-key bundle, checks it
// against any pinned identity key, runs X3DH as the initiator, and seals
// plaintext into a single envelope.
func (s *Service) SendMessage(
	ctx context.Context,
	passphrase string,
	from domain.Username,
	to domain.Username,
	plaintext []byte,
) error {
	pinned, found, err := s.sessionStore.LoadSession(to)
	if err != nil {
		return fmt.Errorf("message: load session: %w", err)
	}
	if !found {
		return ErrNoSession
	}

	peerBundle, err := s.relayClient.RequestPreKeys(ctx, to)
	if err != nil {
		return fmt.Errorf("message: request pre-keys for %q: %w", to, err)
	}
	if peerBundle.IdentityKey != pinned.PeerIdentityKey {
		return ErrPeerIdentityKeyMismatch
	}

	id, err := s.idStore.LoadIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("message: load identity: %w", err)
	}

	sk, initial, err := x3dh.InitiateSend(id, peerBundle)
	if err != nil {
		return fmt.Errorf("message: x3dh initiate send: %w", err)
	}
	defer memzero.Zero(sk)

	ad := x3dh.AssociatedData(id.IdentityKeyPub, peerBundle.IdentityKey)
	cipher, err := aead.Encrypt(sk, plaintext, ad)
	if err != nil {
		return fmt.Errorf("message: seal: %w", err)
	}

	envelope := domain.Envelope{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Initial:   initial,
		Cipher:    cipher,
		Timestamp: time.Now().Unix(),
	}
	return s.relayClient.SendMessage(ctx, envelope)
}

// ReceiveMessage opens a retrieval stream for me, drains whatever is
// already queued (bounded by limit when limit > 0), and returns the
// decrypted messages. It stops once the stream has been idle for
// drainIdle, on the assumption the backlog is exhausted.
func (s *Service) ReceiveMessage(
	ctx context.Context,
	passphrase string,
	me domain.Username,
	limit int,
) ([]domain.DecryptedMessage, error) {
	id, err := s.idStore.LoadIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("message: load identity: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	envelopes, err := s.relayClient.RetrieveMessages(streamCtx, me)
	if err != nil {
		return nil, fmt.Errorf("message: retrieve messages: %w", err)
	}

	idle := time.NewTimer(drainIdle)
	defer idle.Stop()

	decrypted := make([]domain.DecryptedMessage, 0)
	for {
		if limit > 0 && len(decrypted) >= limit {
			return decrypted, nil
		}
		select {
		case <-ctx.Done():
			return decrypted, ctx.Err()
		case <-idle.C:
			return decrypted, nil
		case envelope, ok := <-envelopes:
			if !ok {
				return decrypted, nil
			}
			msg, err := s.decryptEnvelope(id, envelope)
			if err != nil {
				return decrypted, fmt.Errorf("message: decrypt from %q: %w", envelope.From, err)
			}
			decrypted = append(decrypted, msg)
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(drainIdle)
		}
	}
}

// StreamMessages subscribes as a live receiver for me and delivers
// decrypted messages to out until ctx is cancelled, the stream ends, or a
// decrypt error occurs.
func (s *Service) StreamMessages(
	ctx context.Context,
	passphrase string,
	me domain.Username,
	out chan<- domain.DecryptedMessage,
) error {
	id, err := s.idStore.LoadIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("message: load identity: %w", err)
	}

	envelopes, err := s.relayClient.RetrieveMessages(ctx, me)
	if err != nil {
		return fmt.Errorf("message: retrieve messages: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case envelope, ok := <-envelopes:
			if !ok {
				return nil
			}
			msg, err := s.decryptEnvelope(id, envelope)
			if err != nil {
				return fmt.Errorf("message: decrypt from %q: %w", envelope.From, err)
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// decryptEnvelope runs X3DH as the responder using the pre-keys named in
// envelope.Initial, then opens the sealed plaintext.
func (s *Service) decryptEnvelope(id domain.Identity, envelope domain.Envelope) (domain.DecryptedMessage, error) {
	pinned, pinnedFound, err := s.sessionStore.LoadSession(envelope.From)
	if err != nil {
		return domain.DecryptedMessage{}, err
	}
	if pinnedFound && pinned.PeerIdentityKey != envelope.Initial.SenderIdentityKey {
		return domain.DecryptedMessage{}, ErrPeerIdentityKeyMismatch
	}

	spkPriv, _, _, found, err := s.prekeyStore.LoadSignedPreKey(envelope.Initial.SignedPreKeyID)
	if err != nil {
		return domain.DecryptedMessage{}, err
	}
	if !found {
		return domain.DecryptedMessage{}, fmt.Errorf("signed pre-key %q not found", envelope.Initial.SignedPreKeyID)
	}

	var opkPriv *domain.X25519Private
	if envelope.Initial.OneTimePreKeyID != "" {
		priv, _, ok, err := s.prekeyStore.ConsumeAndWipeOneTimePreKey(envelope.Initial.OneTimePreKeyID)
		if err != nil {
			return domain.DecryptedMessage{}, err
		}
		if !ok {
			return domain.DecryptedMessage{}, fmt.Errorf("one-time pre-key %q already consumed", envelope.Initial.OneTimePreKeyID)
		}
		opkPriv = &priv
	}

	sk, err := x3dh.InitiateRecv(id, spkPriv, opkPriv, envelope.Initial)
	if err != nil {
		return domain.DecryptedMessage{}, fmt.Errorf("x3dh initiate recv: %w", err)
	}
	defer memzero.Zero(sk)

	ad := x3dh.AssociatedData(envelope.Initial.SenderIdentityKey, id.IdentityKeyPub)
	plaintext, err := aead.Decrypt(sk, envelope.Cipher, ad)
	if err != nil {
		return domain.DecryptedMessage{}, err
	}

	return domain.DecryptedMessage{
		From:      envelope.From,
		To:        envelope.To,
		Plaintext: plaintext,
		Timestamp: envelope.Timestamp,
	}, nil
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
