package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSignal     EventType = "signal"
	EventSuppressed EventType = "suppressed"
	EventAttach     EventType = "attach"
	EventDetach     EventType = "detach"
)

// ContainerEvent describes something the coordinator did to one container.
type ContainerEvent struct {
	Timestamp   time.Time      `json:"timestamp"`
	Type        EventType      `json:"type"`
	ContainerID string         `json:"container_id"`
	EngineID    string         `json:"engine_id"`
	Signal      Signal         `json:"signal,omitempty"`
	Stage       LifecycleStage `json:"stage"`
	// TopID is the registry top observed when the signal arrived (may be empty).
	TopID string `json:"top_id,omitempty"`
}

// LifecycleHooks defines callbacks for coordinator observability.
// Hooks run synchronously inside the coordinator's critical section and must not block.
type LifecycleHooks struct {
	OnSignal     func(context.Context, *ContainerEvent)
	OnSuppressed func(context.Context, *ContainerEvent)
	OnAttach     func(context.Context, *ContainerEvent)
	OnDetach     func(context.Context, *ContainerEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnSignal:     chain(h.OnSignal, other.OnSignal),
		OnSuppressed: chain(h.OnSuppressed, other.OnSuppressed),
		OnAttach:     chain(h.OnAttach, other.OnAttach),
		OnDetach:     chain(h.OnDetach, other.OnDetach),
	}
}

func chain(a, b func(context.Context, *ContainerEvent)) func(context.Context, *ContainerEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *ContainerEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
