package server

import (
	"sync"
	"testing"

	"rendezvous/internal/crypto"
	"rendezvous/internal/crypto/bundle"
	"rendezvous/internal/domain"
)

// signedRegistration builds a registration request for username whose
// signed pre-key and one-time pre-key pool are both validly signed under a
// freshly generated identity key, as Register requires.
func signedRegistration(t *testing.T, username domain.Username, spkID domain.SignedPreKeyID, opkIDs ...domain.OneTimePreKeyID) domain.RegisterPreKeyBundleRequest {
	t.Helper()

	ikPriv, ikPub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	_, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	spkSig := bundle.Sign(ikPriv, []domain.X25519Public{spkPub})

	opks := make([]domain.OneTimePreKeyPublic, len(opkIDs))
	opkKeys := make([]domain.X25519Public, len(opkIDs))
	for i, id := range opkIDs {
		_, opkPub, err := crypto.GenerateX25519()
		if err != nil {
			t.Fatalf("GenerateX25519: %v", err)
		}
		opks[i] = domain.OneTimePreKeyPublic{ID: id, Pub: opkPub}
		opkKeys[i] = opkPub
	}
	opkSig := bundle.Sign(ikPriv, opkKeys)

	return domain.RegisterPreKeyBundleRequest{
		Username:                username,
		IdentityKey:             ikPub,
		SignedPreKeyID:          spkID,
		SignedPreKey:            spkPub,
		SignedPreKeySignature:   spkSig,
		OneTimePreKeys:          opks,
		OneTimePreKeysSignature: opkSig,
	}
}

func TestRegistry_RejectsInvalidSignedPreKeySignature(t *testing.T) {
	reg := NewRegistry()
	req := signedRegistration(t, "mallory", "spk-1")
	req.SignedPreKeySignature[0] ^= 0xFF

	if err := reg.Register(req); err != domain.ErrSignatureInvalid {
		t.Fatalf("want ErrSignatureInvalid, got %v", err)
	}
}

func TestRegistry_RejectsInvalidOneTimePreKeySignature(t *testing.T) {
	reg := NewRegistry()
	req := signedRegistration(t, "mallory", "spk-1", "opk-1")
	req.OneTimePreKeysSignature[0] ^= 0xFF

	if err := reg.Register(req); err != domain.ErrSignatureInvalid {
		t.Fatalf("want ErrSignatureInvalid, got %v", err)
	}
}

func TestRegistry_BundleDispensesOneTimePreKeyAtMostOnce(t *testing.T) {
	reg := NewRegistry()
	username := domain.Username("alice")

	req := signedRegistration(t, username, "spk-1", "opk-1")
	if err := reg.Register(req); err != nil {
		t.Fatalf("Register: %v", err)
	}

	first, err := reg.Bundle(username)
	if err != nil {
		t.Fatalf("Bundle (1st): %v", err)
	}
	if first.OneTimePreKey == nil || first.OneTimePreKey.ID != "opk-1" {
		t.Fatal("expected the one-time pre-key to be dispensed on first fetch")
	}

	second, err := reg.Bundle(username)
	if err != nil {
		t.Fatalf("Bundle (2nd): %v", err)
	}
	if second.OneTimePreKey != nil {
		t.Fatal("expected no one-time pre-key left to dispense on second fetch")
	}
}

func TestRegistry_BundleConcurrentFetchesDispenseOnce(t *testing.T) {
	reg := NewRegistry()
	username := domain.Username("bob")

	req := signedRegistration(t, username, "spk-1", "opk-1")
	if err := reg.Register(req); err != nil {
		t.Fatalf("Register: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	dispensed := 0
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			b, err := reg.Bundle(username)
			if err != nil {
				t.Errorf("Bundle: %v", err)
				return
			}
			if b.OneTimePreKey != nil {
				mu.Lock()
				dispensed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if dispensed != 1 {
		t.Fatalf("want exactly 1 dispensed one-time pre-key under concurrent fetch, got %d", dispensed)
	}
}

func TestRegistry_RegisterConflictingIdentityKey(t *testing.T) {
	reg := NewRegistry()
	username := domain.Username("carol")

	first := signedRegistration(t, username, "spk-1")
	if err := reg.Register(first); err != nil {
		t.Fatalf("Register (1st): %v", err)
	}

	second := signedRegistration(t, username, "spk-2")
	if err := reg.Register(second); err != domain.ErrRegistrationConflict {
		t.Fatalf("want ErrRegistrationConflict, got %v", err)
	}
}

func TestRegistry_DeliverQueuesWithoutLiveReceiver(t *testing.T) {
	reg := NewRegistry()
	to := domain.Username("dave")

	live := reg.Deliver(domain.Envelope{From: "alice", To: to})
	if live {
		t.Fatal("expected no live receiver to be connected")
	}
	if depth := reg.QueueDepth(to); depth != 1 {
		t.Fatalf("want queue depth 1, got %d", depth)
	}
}

func TestRegistry_SubscribeDrainsBacklogThenLiveDeliversDirectly(t *testing.T) {
	reg := NewRegistry()
	to := domain.Username("erin")

	reg.Deliver(domain.Envelope{From: "alice", To: to, ID: "queued-1"})
	reg.Deliver(domain.Envelope{From: "alice", To: to, ID: "queued-2"})

	ch, unsubscribe := reg.Subscribe(to)
	defer unsubscribe()

	first := <-ch
	second := <-ch
	if first.ID != "queued-1" || second.ID != "queued-2" {
		t.Fatalf("expected drained backlog in FIFO order, got %q then %q", first.ID, second.ID)
	}

	live := reg.Deliver(domain.Envelope{From: "alice", To: to, ID: "live-1"})
	if !live {
		t.Fatal("expected delivery directly to the connected live receiver")
	}
	if got := <-ch; got.ID != "live-1" {
		t.Fatalf("want live-1, got %q", got.ID)
	}
}

func TestRegistry_UnsubscribeFallsBackToQueueing(t *testing.T) {
	reg := NewRegistry()
	to := domain.Username("frank")

	_, unsubscribe := reg.Subscribe(to)
	unsubscribe()

	if live := reg.Deliver(domain.Envelope{From: "alice", To: to}); live {
		t.Fatal("expected no live receiver after unsubscribe")
	}
	if depth := reg.QueueDepth(to); depth != 1 {
		t.Fatalf("want queue depth 1 after unsubscribe, got %d", depth)
	}
}
