package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/stagehand/internal/logging"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed launch lock may be held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager persists descriptors until the host instantiates them, guaranteeing that
// a unique id is reserved at most once. It uses Reference Counting to garbage
// collect unused locks.
type Manager struct {
	store ports.DescriptorStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a launch Manager backed by store.
func NewManager(store ports.DescriptorStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Launch builds the descriptor and reserves its unique id in the store.
// Returns domain.ErrDuplicateContainer if the id is already reserved.
func (m *Manager) Launch(ctx context.Context, b *Builder) (domain.Descriptor, error) {
	d, err := b.Build()
	if err != nil {
		return domain.Descriptor{}, err
	}
	err = m.WithLock(ctx, d.UniqueID, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, d.UniqueID)
		if err == nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateContainer, d.UniqueID)
		}
		if !errors.Is(err, domain.ErrDescriptorNotFound) {
			return fmt.Errorf("failed to check descriptor existence: %w", err)
		}
		if err := m.store.Save(ctx, d); err != nil {
			return fmt.Errorf("failed to save descriptor: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Descriptor{}, err
	}
	m.logger.Debug("container launched", "unique_id", d.UniqueID, "url", d.URL, "engine_id", d.EngineID)
	return d, nil
}

// Load retrieves a reserved descriptor.
func (m *Manager) Load(ctx context.Context, id string) (domain.Descriptor, error) {
	var d domain.Descriptor
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		d, err = m.store.Load(ctx, id)
		return err
	})
	return d, err
}

// Release frees a unique id, typically once its container is destroyed.
func (m *Manager) Release(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// WithLock executes a function while holding the lock for the unique id.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"unique_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
