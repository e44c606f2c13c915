package credstore

import "sync"

// MemStore keeps the credential in memory only. Used by tests and
// as an ephemeral store when persistence is not wanted.
type MemStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Get returns the stored token, if any
func (s *MemStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.set
}

// Set replaces the stored token
func (s *MemStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
	return nil
}

// Clear erases the stored token
func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
	return nil
}
