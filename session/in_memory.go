package session

import (
	"sort"
	"sync"
)

// InMemoryStore is a volatile store keeping sessions in a process local map.
// It is safe for concurrent access and suited for a single server process.
type InMemoryStore[S any] struct {
	mu       sync.RWMutex
	sessions map[string]S
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore[S any]() *InMemoryStore[S] {
	return &InMemoryStore[S]{sessions: make(map[string]S)}
}

// Get returns the session stored under id.
func (s *InMemoryStore[S]) Get(id string) (S, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Put stores sess under id, replacing any previous entry.
func (s *InMemoryStore[S]) Put(id string, sess S) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

// Delete removes id and returns the removed session.
func (s *InMemoryStore[S]) Delete(id string) (S, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	return sess, ok
}

// Len returns the number of stored sessions.
func (s *InMemoryStore[S]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// IDs returns the stored ids in lexical order.
func (s *InMemoryStore[S]) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
