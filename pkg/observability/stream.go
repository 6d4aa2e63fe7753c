package observability

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/stagehand/internal/logging"
	"github.com/aretw0/stagehand/pkg/domain"
)

// DefaultStreamBuffer is the per-subscriber channel size.
const DefaultStreamBuffer = 32

// Stream broadcasts coordinator events to subscribers.
// Slow subscribers lose events instead of blocking the coordinator.
type Stream struct {
	mu          sync.RWMutex
	subscribers map[chan domain.ContainerEvent]string // channel -> container filter
	logger      *slog.Logger
}

// NewStream creates an empty stream. logger may be nil.
func NewStream(logger *slog.Logger) *Stream {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stream{
		subscribers: make(map[chan domain.ContainerEvent]string),
		logger:      logger,
	}
}

// Subscribe returns a channel of events for containerID ("" for all) and a cancel func.
func (s *Stream) Subscribe(containerID string) (<-chan domain.ContainerEvent, func()) {
	ch := make(chan domain.ContainerEvent, DefaultStreamBuffer)

	s.mu.Lock()
	s.subscribers[ch] = containerID
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Len returns the number of subscribers.
func (s *Stream) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// Publish delivers e to every matching subscriber without blocking.
func (s *Stream) Publish(e domain.ContainerEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch, filter := range s.subscribers {
		if filter != "" && filter != e.ContainerID {
			continue
		}
		select {
		case ch <- e:
		default:
			s.logger.Warn("event stream: subscriber buffer full, dropping event",
				"container", e.ContainerID,
				"type", string(e.Type),
			)
		}
	}
}

// Hooks returns lifecycle hooks that publish to s.
func (s *Stream) Hooks() domain.LifecycleHooks {
	publish := func(ctx context.Context, e *domain.ContainerEvent) {
		s.Publish(*e)
	}
	return domain.LifecycleHooks{
		OnSignal:     publish,
		OnSuppressed: publish,
		OnAttach:     publish,
		OnDetach:     publish,
	}
}
