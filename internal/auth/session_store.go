package auth

import (
	"sync"
)

// SessionStore tracks which issued tokens are still live per user. It is
// an explicitly owned store with a defined lifecycle: created at process
// start, cleared at shutdown, reached only through this interface.
type SessionStore interface {
	Add(username, token string)
	Remove(username, token string)
	Valid(username, token string) bool
	Clear()
}

// MemorySessionStore is the in-process SessionStore implementation.
type MemorySessionStore struct {
	mu     sync.RWMutex
	tokens map[string]map[string]struct{}
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		tokens: make(map[string]map[string]struct{}),
	}
}

// Add records a freshly issued token for the user
func (s *MemorySessionStore) Add(username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokens[username] == nil {
		s.tokens[username] = make(map[string]struct{})
	}
	s.tokens[username][token] = struct{}{}
}

// Remove invalidates a single token for the user
func (s *MemorySessionStore) Remove(username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userTokens, ok := s.tokens[username]; ok {
		delete(userTokens, token)
		if len(userTokens) == 0 {
			delete(s.tokens, username)
		}
	}
}

// Valid reports whether the token was issued to the user and has not been
// removed
func (s *MemorySessionStore) Valid(username, token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userTokens, ok := s.tokens[username]
	if !ok {
		return false
	}
	_, ok = userTokens[token]
	return ok
}

// Clear drops every live session; called at shutdown
func (s *MemorySessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = make(map[string]map[string]struct{})
}
