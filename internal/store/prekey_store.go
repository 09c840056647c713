package store

import (
	"path/filepath"
	"sync"

	"rendezvous/internal/domain"
	"rendezvous/internal/util/memzero"
)

const (
	spkPairsFile   = "spk_pairs.json"
	opkPairsFile   = "opk_pairs.json"
	prekeyMetaFile = "prekey_meta.json"
)

// PreKeyFileStore persists signed and one-time pre-key state to disk.
type PreKeyFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewPreKeyFileStore returns a PreKeyFileStore rooted at dir.
func NewPreKeyFileStore(dir string) *PreKeyFileStore {
	return &PreKeyFileStore{dir: dir}
}

type spkRecord struct {
	Priv domain.X25519Private   `json:"priv"`
	Pub  domain.X25519Public    `json:"pub"`
	Sig  domain.BundleSignature `json:"sig"`
}

type opkRecord struct {
	Priv domain.X25519Private `json:"priv"`
	Pub  domain.X25519Public  `json:"pub"`
}

type prekeyMeta struct {
	CurrentSPKID domain.SignedPreKeyID `json:"current_spk_id"`
}

// SaveSignedPreKey stores a freshly-minted signed pre-key by id.
func (s *PreKeyFileStore) SaveSignedPreKey(
	id domain.SignedPreKeyID,
	priv domain.X25519Private,
	pub domain.X25519Public,
	sig domain.BundleSignature,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, spkPairsFile)
	m := map[domain.SignedPreKeyID]spkRecord{}
	if err := readJSON(path, &m); err != nil {
		return err
	}
	m[id] = spkRecord{Priv: priv, Pub: pub, Sig: sig}
	return writeJSON(path, m, 0o600)
}

// LoadSignedPreKey retrieves a signed pre-key by id.
func (s *PreKeyFileStore) LoadSignedPreKey(
	id domain.SignedPreKeyID,
) (
	priv domain.X25519Private,
	pub domain.X25519Public,
	sig domain.BundleSignature,
	ok bool,
	err error,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, spkPairsFile)
	m := map[domain.SignedPreKeyID]spkRecord{}
	if err = readJSON(path, &m); err != nil {
		return priv, pub, sig, false, err
	}
	r, ok := m[id]
	if !ok {
		return priv, pub, sig, false, nil
	}
	return r.Priv, r.Pub, r.Sig, true, nil
}

// SaveOneTimePreKeys merges a freshly-minted batch into the local pool.
func (s *PreKeyFileStore) SaveOneTimePreKeys(pairs []domain.OneTimePreKeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, opkPairsFile)
	m := map[domain.OneTimePreKeyID]opkRecord{}
	if err := readJSON(path, &m); err != nil {
		return err
	}
	for _, p := range pairs {
		m[p.ID] = opkRecord{Priv: p.Priv, Pub: p.Pub}
	}
	return writeJSON(path, m, 0o600)
}

// ConsumeAndWipeOneTimePreKey atomically removes the named one-time pre-key
// from the pool, zeroing its secret before the map is discarded, so the same
// id can never be dispensed twice (P7).
func (s *PreKeyFileStore) ConsumeAndWipeOneTimePreKey(
	id domain.OneTimePreKeyID,
) (
	priv domain.X25519Private,
	pub domain.X25519Public,
	ok bool,
	err error,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, opkPairsFile)
	m := map[domain.OneTimePreKeyID]opkRecord{}
	if err = readJSON(path, &m); err != nil {
		return priv, pub, false, err
	}
	r, ok := m[id]
	if !ok {
		return priv, pub, false, nil
	}
	delete(m, id)
	if err = writeJSON(path, m, 0o600); err != nil {
		return priv, pub, false, err
	}
	priv, pub = r.Priv, r.Pub
	memzero.Zero(r.Priv[:])
	return priv, pub, true, nil
}

// ListOneTimePreKeyPublics exposes only the public halves, for bundling.
func (s *PreKeyFileStore) ListOneTimePreKeyPublics() ([]domain.OneTimePreKeyPublic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, opkPairsFile)
	m := map[domain.OneTimePreKeyID]opkRecord{}
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}

	out := make([]domain.OneTimePreKeyPublic, 0, len(m))
	for id, r := range m {
		out = append(out, domain.OneTimePreKeyPublic{ID: id, Pub: r.Pub})
	}
	return out, nil
}

// SetCurrentSignedPreKeyID records which signed pre-key id is current.
func (s *PreKeyFileStore) SetCurrentSignedPreKeyID(id domain.SignedPreKeyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, prekeyMetaFile)
	return writeJSON(path, prekeyMeta{CurrentSPKID: id}, 0o600)
}

// CurrentSignedPreKeyID returns the recorded current signed pre-key id.
func (s *PreKeyFileStore) CurrentSignedPreKeyID() (domain.SignedPreKeyID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, prekeyMetaFile)
	var meta prekeyMeta
	if err := readJSON(path, &meta); err != nil {
		return "", false, err
	}
	if meta.CurrentSPKID == "" {
		return "", false, nil
	}
	return meta.CurrentSPKID, true, nil
}

var _ domain.PreKeyStore = (*PreKeyFileStore)(nil)
