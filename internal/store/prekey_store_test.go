package store_test

import (
	"sync"
	"testing"

	"rendezvous/internal/domain"
	"rendezvous/internal/store"
)

func TestPreKeyStore_SignedPreKeyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := store.NewPreKeyFileStore(dir)

	id := domain.SignedPreKeyID("spk-1")
	priv := domain.X25519Private{1}
	pub := domain.X25519Public{2}
	sig := domain.BundleSignature{3}

	if err := s.SaveSignedPreKey(id, priv, pub, sig); err != nil {
		t.Fatalf("SaveSignedPreKey: %v", err)
	}
	gotPriv, gotPub, gotSig, ok, err := s.LoadSignedPreKey(id)
	if err != nil {
		t.Fatalf("LoadSignedPreKey: %v", err)
	}
	if !ok {
		t.Fatal("LoadSignedPreKey: not found")
	}
	if gotPriv != priv || gotPub != pub || gotSig != sig {
		t.Fatal("LoadSignedPreKey returned mismatched key material")
	}
}

func TestPreKeyStore_ConsumeAndWipeOneTimePreKey_AtMostOnce(t *testing.T) {
	dir := t.TempDir()
	s := store.NewPreKeyFileStore(dir)

	id := domain.OneTimePreKeyID("opk-1")
	pairs := []domain.OneTimePreKeyPair{{ID: id, Priv: domain.X25519Private{9}, Pub: domain.X25519Public{8}}}
	if err := s.SaveOneTimePreKeys(pairs); err != nil {
		t.Fatalf("SaveOneTimePreKeys: %v", err)
	}

	_, _, ok, err := s.ConsumeAndWipeOneTimePreKey(id)
	if err != nil {
		t.Fatalf("ConsumeAndWipeOneTimePreKey (1st): %v", err)
	}
	if !ok {
		t.Fatal("expected first consumption to succeed")
	}

	_, _, ok, err = s.ConsumeAndWipeOneTimePreKey(id)
	if err != nil {
		t.Fatalf("ConsumeAndWipeOneTimePreKey (2nd): %v", err)
	}
	if ok {
		t.Fatal("expected second consumption of the same id to fail")
	}
}

func TestPreKeyStore_ConsumeAndWipeOneTimePreKey_ConcurrentRace(t *testing.T) {
	dir := t.TempDir()
	s := store.NewPreKeyFileStore(dir)

	id := domain.OneTimePreKeyID("opk-race")
	pairs := []domain.OneTimePreKeyPair{{ID: id, Priv: domain.X25519Private{9}, Pub: domain.X25519Public{8}}}
	if err := s.SaveOneTimePreKeys(pairs); err != nil {
		t.Fatalf("SaveOneTimePreKeys: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	var successes int
	var mu sync.Mutex
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _, ok, err := s.ConsumeAndWipeOneTimePreKey(id)
			if err != nil {
				t.Errorf("ConsumeAndWipeOneTimePreKey: %v", err)
				return
			}
			if ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("want exactly 1 successful consumption under concurrent access, got %d", successes)
	}
}

func TestPreKeyStore_ListOneTimePreKeyPublics(t *testing.T) {
	dir := t.TempDir()
	s := store.NewPreKeyFileStore(dir)

	pairs := []domain.OneTimePreKeyPair{
		{ID: "opk-1", Priv: domain.X25519Private{1}, Pub: domain.X25519Public{1}},
		{ID: "opk-2", Priv: domain.X25519Private{2}, Pub: domain.X25519Public{2}},
	}
	if err := s.SaveOneTimePreKeys(pairs); err != nil {
		t.Fatalf("SaveOneTimePreKeys: %v", err)
	}

	publics, err := s.ListOneTimePreKeyPublics()
	if err != nil {
		t.Fatalf("ListOneTimePreKeyPublics: %v", err)
	}
	if len(publics) != 2 {
		t.Fatalf("want 2 one-time pre-keys, got %d", len(publics))
	}
}

func TestPreKeyStore_CurrentSignedPreKeyID(t *testing.T) {
	dir := t.TempDir()
	s := store.NewPreKeyFileStore(dir)

	if _, ok, err := s.CurrentSignedPreKeyID(); err != nil || ok {
		t.Fatalf("expected no current signed pre-key initially, ok=%v err=%v", ok, err)
	}

	if err := s.SetCurrentSignedPreKeyID("spk-current"); err != nil {
		t.Fatalf("SetCurrentSignedPreKeyID: %v", err)
	}
	id, ok, err := s.CurrentSignedPreKeyID()
	if err != nil {
		t.Fatalf("CurrentSignedPreKeyID: %v", err)
	}
	if !ok || id != "spk-current" {
		t.Fatalf("want spk-current, got %q (ok=%v)", id, ok)
	}
}
