package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps every session in process memory
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]map[string]string)}
}

// Session returns the namespace of sessionID
func (b *MemoryBackend) Session(sessionID string) (Storage, error) {
	if sessionID == "" {
		return nil, ErrEmptySession
	}
	return &memoryStorage{backend: b, sessionID: sessionID}, nil
}

type memoryStorage struct {
	backend   *MemoryBackend
	sessionID string
}

func (s *memoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	value, ok := s.backend.sessions[s.sessionID][key]
	return value, ok, nil
}

func (s *memoryStorage) SetItem(_ context.Context, key, value string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	items, ok := s.backend.sessions[s.sessionID]
	if !ok {
		items = make(map[string]string)
		s.backend.sessions[s.sessionID] = items
	}
	items[key] = value
	return nil
}

func (s *memoryStorage) RemoveItem(_ context.Context, key string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	delete(s.backend.sessions[s.sessionID], key)
	return nil
}
