package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the encoded blob in memory. It exists for tests and
// short-lived tools; the round-trip through Encode/Decode keeps its behavior
// identical to the durable stores, including schema checks on load.
//
// MemoryStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MemoryStore struct {
	mu   sync.Mutex
	blob []byte
}

// NewMemoryStore describes the newmemorystore operation and its observable behavior.
//
// NewMemoryStore may return an error when input validation, dependency calls, or security checks fail.
// NewMemoryStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	blob, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blob = blob
	m.mu.Unlock()
	return nil
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *MemoryStore) Load(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	blob := m.blob
	m.mu.Unlock()

	if blob == nil {
		return &Session{}, nil
	}
	s, err := Decode(blob)
	if err != nil {
		return &Session{}, nil
	}
	return s, nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.blob = nil
	m.mu.Unlock()
	return nil
}
