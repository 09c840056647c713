package store

import (
	"path/filepath"
	"sync"

	"rendezvous/internal/domain"
)

const sessionsFile = "sessions.json"

// SessionFileStore persists trust-on-first-use peer identity pins.
type SessionFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewSessionFileStore returns a SessionFileStore rooted at dir.
func NewSessionFileStore(dir string) *SessionFileStore {
	return &SessionFileStore{dir: dir}
}

// SaveSession records or updates the pinned identity key for peer.
func (s *SessionFileStore) SaveSession(peer domain.Username, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, sessionsFile)
	m := map[domain.Username]domain.Session{}
	if err := readJSON(path, &m); err != nil {
		return err
	}
	m[peer] = session
	return writeJSON(path, m, 0o600)
}

// LoadSession returns the pinned identity key for peer, if one is on file.
func (s *SessionFileStore) LoadSession(peer domain.Username) (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, sessionsFile)
	m := map[domain.Username]domain.Session{}
	if err := readJSON(path, &m); err != nil {
		return domain.Session{}, false, err
	}
	sess, ok := m[peer]
	return sess, ok, nil
}

var _ domain.SessionStore = (*SessionFileStore)(nil)
