package utils

import "sync"

// SessionLocks serializes message processing per user: all transition logic
// for one userID runs under that user's lock, while different users proceed
// in parallel.
type SessionLocks struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

// NewSessionLocks returns an empty lock registry.
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *SessionLocks) get(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, exists := s.locks[userID]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// Lock acquires the per-user lock, blocking until any in-flight message for
// the same user finishes.
func (s *SessionLocks) Lock(userID string) {
	s.get(userID).Lock()
}

// Unlock releases the per-user lock. Must be called on every exit path.
func (s *SessionLocks) Unlock(userID string) {
	s.get(userID).Unlock()
}
