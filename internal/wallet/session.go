package wallet

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Session caches unlocked keys on disk so that repeated commands do not
// prompt for the keyring password. The file is only readable by its owner.
type Session struct {
	path string
	mu   sync.Mutex
}

// DefaultSessionPath returns the per-user session cache file.
//
//	macOS:   ~/Library/Caches/mdtlockup/session.json
//	Linux:   ~/.cache/mdtlockup/session.json
//	Windows: %LocalAppData%\mdtlockup\session.json
func DefaultSessionPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, keychainService, "session.json")
}

// NewSession returns a session cache stored at path.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// Path returns the session file location.
func (s *Session) Path() string { return s.path }

// Get returns a cached key for ref.
func (s *Session) Get(ref string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.load()[ref]
	return v, ok
}

// Put caches a key for ref.
func (s *Session) Put(ref, hexKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	m[ref] = hexKey
	return s.save(m)
}

// Remove evicts a single key. Missing refs are not an error.
func (s *Session) Remove(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	if _, ok := m[ref]; !ok {
		return nil
	}
	delete(m, ref)
	return s.save(m)
}

// Snapshot returns a copy of every cached entry in one read.
func (s *Session) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Clear removes all cached keys by deleting the session file.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Active reports whether any key is cached.
func (s *Session) Active() bool {
	return len(s.Snapshot()) > 0
}

// load never returns nil; a missing or corrupt file reads as empty.
func (s *Session) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

func (s *Session) save(m map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return err
	}
	return os.Chmod(s.path, 0o600)
}
