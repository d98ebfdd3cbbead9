package clientstore

import (
	"context"
	"sync"

	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
)

// MemoryStore almacenamiento en memoria (tests, demos).
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

var _ repository.ClientStorage = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
