package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process. States are stored encoded so callers
// never share memory with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
	touched  map[string]time.Time
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
		touched:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// Get returns a copy of the session.
func (m *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	m.mu.RLock()
	data, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(data)
}

// Save stores a copy of s and stamps its UpdatedAt.
func (m *MemoryStore) Save(_ context.Context, s *State) error {
	now := m.now()
	s.UpdatedAt = now
	data, err := encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = data
	m.touched[s.ID] = now
	return nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	delete(m.touched, id)
	return nil
}

// PurgeIdle removes sessions not saved within maxIdle.
func (m *MemoryStore) PurgeIdle(_ context.Context, maxIdle time.Duration) (int, error) {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, at := range m.touched {
		if at.Before(cutoff) {
			delete(m.sessions, id)
			delete(m.touched, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
