package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/propschema/pkg/schema"
)

// Store implements ports.CatalogStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save stores a copy of doc under key.
func (s *Store) Save(ctx context.Context, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = slices.Clone(doc)
	return nil
}

// Load returns a copy of the document stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[key]
	if !ok {
		return nil, schema.ErrSchemaNotFound
	}
	return slices.Clone(doc), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns stored keys, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}
