package server

import (
	"sync"

	"rendezvous/internal/crypto/bundle"
	"rendezvous/internal/domain"
)

const (
	// maxPerUserQueue caps queued envelopes kept per recipient; the oldest
	// are dropped once the cap is exceeded.
	maxPerUserQueue = 1000
	// maxOneTimePreKeys caps the one-time pre-key pool accepted per registration.
	maxOneTimePreKeys = 500
	// liveReceiverBuffer is the channel buffer handed to a WebSocket
	// subscriber on top of its drained backlog; Deliver falls back to the
	// queue once this fills, so a slow reader never blocks a sender.
	liveReceiverBuffer = 32
)

// record is a single identity's relay-side state: its published keys, its
// one-time pre-key pool, its pending message queue, and (if connected) a
// live receiver channel.
type record struct {
	identityKey domain.Ed25519Public
	spkID       domain.SignedPreKeyID
	spkPub      domain.X25519Public
	spkSig      domain.BundleSignature

	opks  map[domain.OneTimePreKeyID]domain.X25519Public
	queue []domain.Envelope
	live  chan<- domain.Envelope
}

// Registry is the relay's in-memory state: one record per registered
// identity, guarded by a single mutex. The relay is not a durable store —
// a restart drops all bundles, pools, and queues.
type Registry struct {
	mu      sync.RWMutex
	records map[domain.Username]*record
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[domain.Username]*record)}
}

// Register stores or updates req's bundle. Re-registering under a
// different identity key than the one already on file is rejected with
// ErrRegistrationConflict: it is the relay's only signal that an identity
// name has been reset or is being impersonated, since there is no separate
// account canary in this design. The signed pre-key signature and the
// one-time pre-key pool signature are both verified under the claimed
// identity key before anything is stored; either failing is
// ErrSignatureInvalid.
func (reg *Registry) Register(req domain.RegisterPreKeyBundleRequest) error {
	if len(req.OneTimePreKeys) > maxOneTimePreKeys {
		return domain.ErrBundleIncomplete
	}

	if err := bundle.Verify(req.IdentityKey, []domain.X25519Public{req.SignedPreKey}, req.SignedPreKeySignature); err != nil {
		return domain.ErrSignatureInvalid
	}

	opkKeys := make([]domain.X25519Public, len(req.OneTimePreKeys))
	for i, opk := range req.OneTimePreKeys {
		opkKeys[i] = opk.Pub
	}
	if err := bundle.Verify(req.IdentityKey, opkKeys, req.OneTimePreKeysSignature); err != nil {
		return domain.ErrSignatureInvalid
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.records[req.Username]
	if ok && r.identityKey != req.IdentityKey {
		return domain.ErrRegistrationConflict
	}
	if !ok {
		r = &record{opks: make(map[domain.OneTimePreKeyID]domain.X25519Public)}
		reg.records[req.Username] = r
	}

	r.identityKey = req.IdentityKey
	r.spkID = req.SignedPreKeyID
	r.spkPub = req.SignedPreKey
	r.spkSig = req.SignedPreKeySignature
	for _, opk := range req.OneTimePreKeys {
		r.opks[opk.ID] = opk.Pub
	}
	return nil
}

// Bundle returns username's current pre-key bundle, dispensing and removing
// one one-time pre-key from the pool if any remain (P7: at-most-once
// consumption — the dispensed id can never be handed out again).
func (reg *Registry) Bundle(username domain.Username) (domain.PreKeyBundle, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.records[username]
	if !ok {
		return domain.PreKeyBundle{}, domain.ErrUnknownIdentity
	}
	if r.spkID == "" {
		return domain.PreKeyBundle{}, domain.ErrBundleIncomplete
	}

	bundle := domain.PreKeyBundle{
		Username:              username,
		IdentityKey:           r.identityKey,
		SignedPreKeyID:        r.spkID,
		SignedPreKey:          r.spkPub,
		SignedPreKeySignature: r.spkSig,
	}
	for id, pub := range r.opks {
		bundle.OneTimePreKey = &domain.OneTimePreKeyPublic{ID: id, Pub: pub}
		delete(r.opks, id)
		break
	}
	return bundle, nil
}

// Deliver routes envelope to its recipient's live receiver if one is
// connected and has buffer space; otherwise it queues the envelope for
// later retrieval. Returns true if the envelope was handed directly to a
// live receiver.
func (reg *Registry) Deliver(envelope domain.Envelope) (live bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.records[envelope.To]
	if !ok {
		r = &record{opks: make(map[domain.OneTimePreKeyID]domain.X25519Public)}
		reg.records[envelope.To] = r
	}

	if r.live != nil {
		select {
		case r.live <- envelope:
			return true
		default:
			// Full or abandoned buffer: fall through to queueing.
		}
	}

	r.queue = append(r.queue, envelope)
	if len(r.queue) > maxPerUserQueue {
		r.queue = r.queue[len(r.queue)-maxPerUserQueue:]
	}
	return false
}

// Subscribe registers the caller as username's live receiver and returns a
// channel carrying the drained backlog followed by new arrivals. unsubscribe
// must be called when the caller stops reading, clearing the live receiver
// so Deliver falls back to queueing again.
func (reg *Registry) Subscribe(username domain.Username) (ch <-chan domain.Envelope, unsubscribe func()) {
	reg.mu.Lock()
	r, ok := reg.records[username]
	if !ok {
		r = &record{opks: make(map[domain.OneTimePreKeyID]domain.X25519Public)}
		reg.records[username] = r
	}
	backlog := r.queue
	r.queue = nil

	out := make(chan domain.Envelope, len(backlog)+liveReceiverBuffer)
	for _, envelope := range backlog {
		out <- envelope
	}
	r.live = out
	reg.mu.Unlock()

	unsubscribe = func() {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		if cur, ok := reg.records[username]; ok && cur.live == out {
			cur.live = nil
		}
	}
	return out, unsubscribe
}

// QueueDepth returns the number of queued (not yet delivered) envelopes for
// username.
func (reg *Registry) QueueDepth(username domain.Username) int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if r, ok := reg.records[username]; ok {
		return len(r.queue)
	}
	return 0
}
