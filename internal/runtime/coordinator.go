package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/stagehand/internal/logging"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/ports"
	"github.com/aretw0/stagehand/pkg/registry"
)

// Coordinator is the attachment state machine. For every engine it guarantees
// that at most one container holds the engine's surfaces, and it orders detach of
// the outgoing container before attach of the incoming one.
//
// One mutex spans each handler, so "read top, detach previous, attach new" is
// atomic even if the host delivers signals from several goroutines. Sink
// notifications are delivered after the mutex is released.
type Coordinator struct {
	mu       sync.Mutex
	registry *registry.Registry
	engines  map[string]ports.Engine
	owners   map[string]string // engine id -> attached container id

	sink   ports.NotificationSink
	rule   SuppressionRule
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithRegistry shares an existing registry instead of creating one.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Coordinator) {
		c.registry = r
	}
}

// WithEngine makes an engine available to containers naming its id.
func WithEngine(e ports.Engine) Option {
	return func(c *Coordinator) {
		c.engines[e.ID()] = e
	}
}

// WithSink sets the notification sink (default: discard).
func WithSink(s ports.NotificationSink) Option {
	return func(c *Coordinator) {
		c.sink = s
	}
}

// WithSuppressionRule installs the spurious-signal predicate. nil disables suppression.
func WithSuppressionRule(rule SuppressionRule) Option {
	return func(c *Coordinator) {
		c.rule = rule
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Coordinator) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCoordinator creates a coordinator with no containers.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		engines: make(map[string]ports.Engine),
		owners:  make(map[string]string),
		sink:    discardSink{},
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = registry.NewRegistry()
	}
	return c
}

// Create registers a new container built from desc.
// The render surface is detached first so the first resume can attach it.
func (co *Coordinator) Create(ctx context.Context, desc domain.Descriptor, surfaces ports.Surfaces) (*Container, error) {
	if surfaces.Render == nil || surfaces.Control == nil {
		return nil, fmt.Errorf("container %s: %w", desc.UniqueID, domain.ErrMissingSurface)
	}
	desc = desc.Clone()
	if desc.EngineID == "" {
		desc.EngineID = domain.DefaultEngineID
	}

	co.mu.Lock()
	engine, ok := co.engines[desc.EngineID]
	if !ok {
		co.mu.Unlock()
		return nil, fmt.Errorf("container %s: %w: %s", desc.UniqueID, domain.ErrEngineNotFound, desc.EngineID)
	}

	c := newContainer(desc, engine, surfaces)
	if err := co.registry.Push(c); err != nil {
		co.mu.Unlock()
		return nil, err
	}
	surfaces.Render.DetachFromEngine()
	co.emit(ctx, co.hooks.OnSignal, domain.EventSignal, c, domain.SignalCreate, co.registry.Top())
	co.logger.Debug("container created", "container", c.UniqueID(), "url", desc.URL, "engine_id", desc.EngineID)
	co.mu.Unlock()

	co.sink.OnContainerCreated(c)
	return c, nil
}

// Start records the start signal.
func (co *Coordinator) Start(ctx context.Context, id string) error {
	return co.handle(ctx, id, domain.SignalStart, func(c *Container, top ports.Container) []func() {
		c.machine.Apply(domain.SignalStart)
		co.emit(ctx, co.hooks.OnSignal, domain.EventSignal, c, domain.SignalStart, top)
		c.engine.Lifecycle().AppIsResumed()
		return nil
	})
}

// Resume brings c to the foreground: the previous top detaches, then c attaches.
func (co *Coordinator) Resume(ctx context.Context, id string) error {
	return co.handle(ctx, id, domain.SignalResume, func(c *Container, top ports.Container) []func() {
		if co.suppressed(ctx, domain.SignalResume, c, top) {
			return nil
		}

		c.machine.Apply(domain.SignalResume)
		co.emit(ctx, co.hooks.OnSignal, domain.EventSignal, c, domain.SignalResume, top)

		// A previous top on another engine keeps its attachment.
		if top != nil && top.UniqueID() != c.UniqueID() && top.CachedEngineID() == c.CachedEngineID() {
			if prev, ok := co.container(top.UniqueID()); ok {
				co.detachIfNeeded(ctx, prev)
			}
		}
		co.attach(ctx, c)
		if err := co.registry.Activate(c.UniqueID()); err != nil {
			co.logger.Error("failed to activate container", "container", c.UniqueID(), "err", err)
		}
		c.engine.Lifecycle().AppIsResumed()

		return []func(){func() { co.sink.OnContainerAppeared(c) }}
	})
}

// Pause records the pause. Detaching is deferred to the next container's resume
// so that detach and attach are ordered from a single call site.
func (co *Coordinator) Pause(ctx context.Context, id string) error {
	return co.handle(ctx, id, domain.SignalPause, func(c *Container, top ports.Container) []func() {
		if co.suppressed(ctx, domain.SignalPause, c, top) {
			return nil
		}

		c.machine.Apply(domain.SignalPause)
		co.emit(ctx, co.hooks.OnSignal, domain.EventSignal, c, domain.SignalPause, top)
		c.engine.Lifecycle().AppIsResumed()

		return []func(){func() { co.sink.OnContainerDisappeared(c) }}
	})
}

// Stop records the stop signal.
func (co *Coordinator) Stop(ctx context.Context, id string) error {
	return co.handle(ctx, id, domain.SignalStop, func(c *Container, top ports.Container) []func() {
		c.machine.Apply(domain.SignalStop)
		co.emit(ctx, co.hooks.OnSignal, domain.EventSignal, c, domain.SignalStop, top)
		c.engine.Lifecycle().AppIsResumed()
		return nil
	})
}

// Destroy tears c down: it is detached if still attached and removed from the registry.
func (co *Coordinator) Destroy(ctx context.Context, id string) error {
	return co.handle(ctx, id, domain.SignalDestroy, func(c *Container, top ports.Container) []func() {
		engine := c.engine

		c.machine.Apply(domain.SignalDestroy)
		co.emit(ctx, co.hooks.OnSignal, domain.EventSignal, c, domain.SignalDestroy, top)

		co.detach(ctx, c)
		co.registry.Remove(c.UniqueID())
		engine.Lifecycle().AppIsResumed()

		return []func(){func() { co.sink.OnContainerDestroyed(c) }}
	})
}

// Back forwards a back-navigation request to the router. No local state changes;
// the container leaves the registry only when its destroy signal arrives.
func (co *Coordinator) Back(ctx context.Context, id string) error {
	return co.handle(ctx, id, domain.SignalBack, func(c *Container, top ports.Container) []func() {
		co.emit(ctx, co.hooks.OnSignal, domain.EventSignal, c, domain.SignalBack, top)
		return []func(){func() { co.sink.PopRoute(c, nil) }}
	})
}

// Dispatch routes a signal by name. Create needs a descriptor and is rejected here.
func (co *Coordinator) Dispatch(ctx context.Context, id string, s domain.Signal) error {
	switch s {
	case domain.SignalStart:
		return co.Start(ctx, id)
	case domain.SignalResume:
		return co.Resume(ctx, id)
	case domain.SignalPause:
		return co.Pause(ctx, id)
	case domain.SignalStop:
		return co.Stop(ctx, id)
	case domain.SignalDestroy:
		return co.Destroy(ctx, id)
	case domain.SignalBack:
		return co.Back(ctx, id)
	case domain.SignalCreate:
		return fmt.Errorf("%w: %s requires a descriptor, use Create", domain.ErrUnknownSignal, s)
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownSignal, s)
}

// Top returns the foreground container, or nil.
func (co *Coordinator) Top() ports.Container {
	return co.registry.Top()
}

// Container looks up a live container.
func (co *Coordinator) Container(id string) (*Container, bool) {
	return co.container(id)
}

// Containers returns the live containers in creation order.
func (co *Coordinator) Containers() []ports.Container {
	return co.registry.Containers()
}

// Registry exposes the container registry.
func (co *Coordinator) Registry() *registry.Registry {
	return co.registry
}

// AttachedTo returns the id of the container attached to engineID.
func (co *Coordinator) AttachedTo(engineID string) (string, bool) {
	co.mu.Lock()
	defer co.mu.Unlock()
	id, ok := co.owners[engineID]
	return id, ok
}

// AttachedCount counts live containers attached to engineID.
func (co *Coordinator) AttachedCount(engineID string) int {
	n := 0
	for _, c := range co.registry.Containers() {
		if c.CachedEngineID() == engineID && c.Attached() {
			n++
		}
	}
	return n
}

// Engines returns the registered engine ids, sorted.
func (co *Coordinator) Engines() []string {
	co.mu.Lock()
	defer co.mu.Unlock()
	ids := make([]string, 0, len(co.engines))
	for id := range co.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// handle runs fn for the container under the coordinator lock, then delivers the
// notifications it returned.
func (co *Coordinator) handle(ctx context.Context, id string, s domain.Signal, fn func(c *Container, top ports.Container) []func()) error {
	co.mu.Lock()
	c, ok := co.container(id)
	if !ok {
		co.mu.Unlock()
		return fmt.Errorf("%s %s: %w", s, id, domain.ErrContainerNotFound)
	}
	notify := fn(c, co.registry.Top())
	co.mu.Unlock()

	for _, n := range notify {
		n()
	}
	return nil
}

func (co *Coordinator) container(id string) (*Container, bool) {
	pc, ok := co.registry.Get(id)
	if !ok {
		return nil, false
	}
	c, ok := pc.(*Container)
	return c, ok
}

func (co *Coordinator) suppressed(ctx context.Context, s domain.Signal, c *Container, top ports.Container) bool {
	if co.rule == nil || !co.rule(top, c) {
		return false
	}
	co.logger.Warn("Skip the unexpected lifecycle event",
		"signal", string(s),
		"container", c.UniqueID(),
		"top", top.UniqueID(),
		"issue", "https://issuetracker.google.com/issues/185693011",
	)
	co.emit(ctx, co.hooks.OnSuppressed, domain.EventSuppressed, c, s, top)
	return true
}

// attach binds c to its engine. Any other holder of the engine is detached first.
func (co *Coordinator) attach(ctx context.Context, c *Container) {
	if c.Attached() {
		return
	}
	engineID := c.CachedEngineID()
	if ownerID, ok := co.owners[engineID]; ok && ownerID != c.UniqueID() {
		if owner, ok := co.container(ownerID); ok {
			co.detach(ctx, owner)
		}
	}
	if !c.bind() {
		return
	}
	co.owners[engineID] = c.UniqueID()
	co.logger.Debug("container attached", "container", c.UniqueID(), "engine_id", engineID)
	co.emit(ctx, co.hooks.OnAttach, domain.EventAttach, c, "", nil)
}

// detach unbinds c from its engine. No-op when c is not attached.
func (co *Coordinator) detach(ctx context.Context, c *Container) bool {
	if !c.unbind() {
		return false
	}
	engineID := c.CachedEngineID()
	if co.owners[engineID] == c.UniqueID() {
		delete(co.owners, engineID)
	}
	co.logger.Debug("container detached", "container", c.UniqueID(), "engine_id", engineID)
	co.emit(ctx, co.hooks.OnDetach, domain.EventDetach, c, "", nil)
	return true
}

// detachIfNeeded detaches c and clears the engine's "UI displayed" flag so the
// outgoing frame is not shown while the next container attaches.
func (co *Coordinator) detachIfNeeded(ctx context.Context, c *Container) {
	if !co.detach(ctx, c) {
		return
	}
	renderer := c.engine.Renderer()
	if renderer == nil {
		return
	}
	if err := renderer.SetDisplayingUI(false); err != nil {
		co.logger.Error("failed to clear UI displayed flag",
			"container", c.UniqueID(),
			"engine_id", c.CachedEngineID(),
			"err", err,
		)
	}
}

func (co *Coordinator) emit(ctx context.Context, hook func(context.Context, *domain.ContainerEvent), t domain.EventType, c *Container, s domain.Signal, top ports.Container) {
	if hook == nil {
		return
	}
	e := &domain.ContainerEvent{
		Timestamp:   co.now(),
		Type:        t,
		ContainerID: c.UniqueID(),
		EngineID:    c.CachedEngineID(),
		Signal:      s,
		Stage:       c.Stage(),
	}
	if top != nil {
		e.TopID = top.UniqueID()
	}
	hook(ctx, e)
}

type discardSink struct{}

func (discardSink) OnContainerCreated(ports.Container)     {}
func (discardSink) OnContainerAppeared(ports.Container)    {}
func (discardSink) OnContainerDisappeared(ports.Container) {}
func (discardSink) OnContainerDestroyed(ports.Container)   {}
func (discardSink) PopRoute(ports.Container, ports.Reply)  {}

// Snapshot captures the registry and engine ownership atomically with respect to signals.
func (co *Coordinator) Snapshot() domain.Snapshot {
	co.mu.Lock()
	defer co.mu.Unlock()

	snap := domain.Snapshot{
		Owners: make(map[string]string, len(co.engines)),
	}
	if top := co.registry.Top(); top != nil {
		snap.Top = top.UniqueID()
	}
	for id := range co.engines {
		snap.Owners[id] = co.owners[id]
	}
	for _, c := range co.registry.Containers() {
		desc := c.Descriptor()
		snap.Containers = append(snap.Containers, domain.ContainerInfo{
			UniqueID:       desc.UniqueID,
			URL:            desc.URL,
			URLParams:      desc.URLParams,
			EngineID:       desc.EngineID,
			BackgroundMode: desc.BackgroundMode,
			Stage:          c.Stage(),
			Pausing:        c.IsPausing(),
			Attached:       c.Attached(),
			Top:            desc.UniqueID == snap.Top,
		})
	}
	return snap
}
