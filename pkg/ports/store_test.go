package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/ports"
)

// MockStore is a map-backed DescriptorStore used to check the contract suite itself.
type MockStore struct {
	mu   sync.Mutex
	data map[string]domain.Descriptor
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]domain.Descriptor)}
}

func (m *MockStore) Save(ctx context.Context, d domain.Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[d.UniqueID] = d.Clone()
	return nil
}

func (m *MockStore) Load(ctx context.Context, id string) (domain.Descriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[id]
	if !ok {
		return domain.Descriptor{}, domain.ErrDescriptorNotFound
	}
	return d.Clone(), nil
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestDescriptorStore_Contract(t *testing.T) {
	ports.RunDescriptorStoreContract(t, NewMockStore())
}
