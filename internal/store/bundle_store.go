package store

import (
	"path/filepath"
	"sync"

	"rendezvous/internal/domain"
)

const bundleFile = "bundle.json"

// BundleFileStore caches the last pre-key bundle request you registered
// with the relay, for offline inspection.
type BundleFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewBundleFileStore returns a BundleFileStore rooted at dir.
func NewBundleFileStore(dir string) *BundleFileStore {
	return &BundleFileStore{dir: dir}
}

// SaveRegisteredBundle writes the registered bundle request to disk.
func (s *BundleFileStore) SaveRegisteredBundle(bundle domain.RegisterPreKeyBundleRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, bundleFile)
	return writeJSON(path, bundle, 0o600)
}

// LoadRegisteredBundle returns the cached bundle request and whether it was present.
func (s *BundleFileStore) LoadRegisteredBundle(
	username domain.Username,
) (domain.RegisterPreKeyBundleRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, bundleFile)

	var bundle domain.RegisterPreKeyBundleRequest
	if err := readJSON(path, &bundle); err != nil {
		return domain.RegisterPreKeyBundleRequest{}, false, err
	}
	if bundle.Username == "" || bundle.Username != username {
		return domain.RegisterPreKeyBundleRequest{}, false, nil
	}
	return bundle, true, nil
}

var _ domain.PreKeyBundleStore = (*BundleFileStore)(nil)
