package mcp

import "sync"

// Session records what a client declared during initialize. Nothing in
// the request path reads it back; it exists for diagnostics and future
// capability negotiation.
type Session struct {
	ID              string
	ProtocolVersion string
	Capabilities    map[string]any
	ClientInfo      map[string]any
}

// SessionStore is a concurrent session registry. It is injected into
// the server rather than held as package state so tests and multiple
// server instances stay isolated.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Session)}
}

func (s *SessionStore) Put(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *SessionStore) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
