package storage

import (
	"context"
	"sync"
)

// MockStore is an in-memory ObjectStore for tests.
type MockStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// FailPut, when set, is returned from Put to simulate storage outages.
	FailPut error
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{objects: make(map[string][]byte)}
}

// Put stores a copy of data.
func (s *MockStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if s.FailPut != nil {
		return s.FailPut
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
	return nil
}

// Get returns a stored blob.
func (s *MockStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return data, nil
}

// Delete removes a blob.
func (s *MockStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Exists checks presence.
func (s *MockStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Len reports the number of stored objects.
func (s *MockStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
