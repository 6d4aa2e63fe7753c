package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/ports"
)

// Registry manages the live containers.
// Membership follows creation order; the active stack follows resume order,
// and its last non-destroyed entry is the top container.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]ports.Container
	created []string
	active  []string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]ports.Container),
	}
}

// Push adds a freshly created container.
// Returns domain.ErrDuplicateContainer if the unique id is already live.
func (r *Registry) Push(c ports.Container) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := c.UniqueID()
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateContainer, id)
	}
	r.byID[id] = c
	r.created = append(r.created, id)
	return nil
}

// Activate moves the container to the top of the active stack.
func (r *Registry) Activate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrContainerNotFound, id)
	}
	r.active = append(without(r.active, id), id)
	return nil
}

// Remove drops the container from the registry and returns it.
func (r *Registry) Remove(id string) (ports.Container, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	delete(r.byID, id)
	r.created = without(r.created, id)
	r.active = without(r.active, id)
	return c, true
}

// Get looks up a container by unique id.
func (r *Registry) Get(id string) (ports.Container, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	return c, ok
}

// Top returns the most recently activated container that is not destroyed, or nil.
func (r *Registry) Top() ports.Container {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.active) - 1; i >= 0; i-- {
		c := r.byID[r.active[i]]
		if c != nil && c.Stage() != domain.StageDestroyed {
			return c
		}
	}
	return nil
}

// IsTop reports whether id is the current top container.
func (r *Registry) IsTop(id string) bool {
	top := r.Top()
	return top != nil && top.UniqueID() == id
}

// Len returns the number of live containers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Containers returns the live containers in creation order.
func (r *Registry) Containers() []ports.Container {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.created)
}

// Active returns the activated containers from bottom to top.
func (r *Registry) Active() []ports.Container {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.active)
}

func (r *Registry) collect(ids []string) []ports.Container {
	out := make([]ports.Container, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
