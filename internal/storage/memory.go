package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used in tests and as a fallback when no
// state dir or redis is configured.
type MemoryStore struct {
	m    sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.m.Lock()
	defer s.m.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.data, key)
	return nil
}
