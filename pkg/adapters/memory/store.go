package memory

import (
	"context"
	"sync"

	"github.com/aretw0/stagehand/pkg/domain"
)

// Store implements ports.DescriptorStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Descriptor
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Descriptor),
	}
}

// Save persists the descriptor in memory.
func (s *Store) Save(ctx context.Context, d domain.Descriptor) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := d.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[d.UniqueID] = copied
	return nil
}

// Load retrieves the descriptor from memory.
func (s *Store) Load(ctx context.Context, uniqueID string) (domain.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.data[uniqueID]
	if !ok {
		return domain.Descriptor{}, domain.ErrDescriptorNotFound
	}
	// Copy on read so callers can't mutate stored params by reference
	return d.Clone(), nil
}

// Delete removes the descriptor.
func (s *Store) Delete(ctx context.Context, uniqueID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, uniqueID)
	return nil
}

// List returns stored ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
