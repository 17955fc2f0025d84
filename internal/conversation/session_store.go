package conversation

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for session IDs the store has never seen or
// has already expired.
var ErrSessionNotFound = errors.New("conversation: session not found")

// SessionStore persists CallState between turns. Put replaces the stored
// state wholesale; partial writes are not part of the contract.
type SessionStore interface {
	Create(ctx context.Context, state *CallState) (string, error)
	Get(ctx context.Context, sessionID string) (*CallState, error)
	Put(ctx context.Context, sessionID string, state *CallState) error
	Delete(ctx context.Context, sessionID string) error
}

// MemorySessionStore keeps sessions in process memory. Suitable for tests
// and single-instance deployments without Redis.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*CallState
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*CallState)}
}

func (s *MemorySessionStore) Create(_ context.Context, state *CallState) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = state.Clone()
	s.mu.Unlock()
	return id, nil
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (*CallState, error) {
	s.mu.RLock()
	state, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return state.Clone(), nil
}

func (s *MemorySessionStore) Put(_ context.Context, sessionID string, state *CallState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	s.sessions[sessionID] = state.Clone()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}
