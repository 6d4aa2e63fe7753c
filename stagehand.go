package stagehand

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/stagehand/internal/logging"
	"github.com/aretw0/stagehand/internal/runtime"
	"github.com/aretw0/stagehand/pkg/adapters/memory"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/launch"
	"github.com/aretw0/stagehand/pkg/ports"
	"github.com/aretw0/stagehand/pkg/registry"
)

// Container is a live screen container. See ports.Container for its query surface.
type Container = runtime.Container

// SuppressionRule decides whether a resume or pause is a spurious host replay.
type SuppressionRule = runtime.SuppressionRule

// HostInfo identifies the host platform delivering lifecycle signals.
type HostInfo = runtime.HostInfo

// SuppressSpuriousSignals is the rule needed by hosts that replay resume/pause
// for containers sitting under a transparent, pausing container.
var SuppressSpuriousSignals SuppressionRule = runtime.SuppressSpuriousSignals

// Coordinator is the high-level entry point for the stagehand library.
// It wraps the attachment coordinator and the descriptor launcher.
type Coordinator struct {
	runtime *runtime.Coordinator
	manager *launch.Manager

	engines  []ports.Engine
	store    ports.DescriptorStore
	locker   ports.DistributedLocker
	sink     ports.NotificationSink
	rule     SuppressionRule
	hooks    domain.LifecycleHooks
	registry *registry.Registry
	logger   *slog.Logger
}

// Option defines a functional option for configuring the Coordinator.
type Option func(*Coordinator)

// WithEngine registers a rendering engine. At least one is required.
func WithEngine(e ports.Engine) Option {
	return func(c *Coordinator) {
		c.engines = append(c.engines, e)
	}
}

// WithStore sets where launched descriptors wait for instantiation (default: memory).
func WithStore(s ports.DescriptorStore) Option {
	return func(c *Coordinator) {
		c.store = s
	}
}

// WithLocker serialises launches across processes sharing the store.
func WithLocker(l ports.DistributedLocker) Option {
	return func(c *Coordinator) {
		c.locker = l
	}
}

// WithSink sets the notification sink relaying container events to the router.
func WithSink(s ports.NotificationSink) Option {
	return func(c *Coordinator) {
		c.sink = s
	}
}

// WithHost enables the suppression rule the host platform needs, if any.
func WithHost(h HostInfo) Option {
	return func(c *Coordinator) {
		c.rule = runtime.RuleForHost(h)
	}
}

// WithSuppressionRule installs a custom suppression rule.
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

// WithRegistry shares a registry with other components.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Coordinator) {
		c.registry = r
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// New initializes a Coordinator.
func New(opts ...Option) (*Coordinator, error) {
	c := &Coordinator{}
	for _, opt := range opts {
		opt(c)
	}

	if len(c.engines) == 0 {
		return nil, fmt.Errorf("at least one engine is required: %w", domain.ErrEngineNotFound)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.store == nil {
		c.store = memory.NewStore()
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(c.logger),
		runtime.WithLifecycleHooks(c.hooks),
		runtime.WithSuppressionRule(c.rule),
	}
	for _, e := range c.engines {
		runtimeOpts = append(runtimeOpts, runtime.WithEngine(e))
	}
	if c.sink != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithSink(c.sink))
	}
	if c.registry != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithRegistry(c.registry))
	}
	c.runtime = runtime.NewCoordinator(runtimeOpts...)

	managerOpts := []launch.Option{launch.WithLogger(c.logger)}
	if c.locker != nil {
		managerOpts = append(managerOpts, launch.WithLocker(c.locker))
	}
	c.manager = launch.NewManager(c.store, managerOpts...)

	return c, nil
}

// Launch resolves the builder into a descriptor and reserves it until a host
// instantiates it with Instantiate.
func (c *Coordinator) Launch(ctx context.Context, b *launch.Builder) (domain.Descriptor, error) {
	return c.manager.Launch(ctx, b)
}

// Instantiate creates the container for a launched descriptor.
func (c *Coordinator) Instantiate(ctx context.Context, uniqueID string, surfaces ports.Surfaces) (*Container, error) {
	d, err := c.manager.Load(ctx, uniqueID)
	if err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", uniqueID, err)
	}
	return c.runtime.Create(ctx, d, surfaces)
}

// Release frees a launched descriptor that was never instantiated, so the
// unique id can be launched again.
func (c *Coordinator) Release(ctx context.Context, uniqueID string) error {
	if _, ok := c.runtime.Container(uniqueID); ok {
		return fmt.Errorf("release %s: %w", uniqueID, domain.ErrDuplicateContainer)
	}
	return c.manager.Release(ctx, uniqueID)
}

// Create registers a container directly from a descriptor (the host's own create signal).
func (c *Coordinator) Create(ctx context.Context, d domain.Descriptor, surfaces ports.Surfaces) (*Container, error) {
	return c.runtime.Create(ctx, d, surfaces)
}

// Start handles the host start signal.
func (c *Coordinator) Start(ctx context.Context, id string) error {
	return c.runtime.Start(ctx, id)
}

// Resume handles the host resume signal.
func (c *Coordinator) Resume(ctx context.Context, id string) error {
	return c.runtime.Resume(ctx, id)
}

// Pause handles the host pause signal.
func (c *Coordinator) Pause(ctx context.Context, id string) error {
	return c.runtime.Pause(ctx, id)
}

// Stop handles the host stop signal.
func (c *Coordinator) Stop(ctx context.Context, id string) error {
	return c.runtime.Stop(ctx, id)
}

// Destroy handles the host destroy signal and frees the launched descriptor.
func (c *Coordinator) Destroy(ctx context.Context, id string) error {
	if err := c.runtime.Destroy(ctx, id); err != nil {
		return err
	}
	if err := c.manager.Release(ctx, id); err != nil && !errors.Is(err, domain.ErrDescriptorNotFound) {
		c.logger.Warn("failed to release descriptor", "container", id, "err", err)
	}
	return nil
}

// Back forwards a back-navigation request to the router.
func (c *Coordinator) Back(ctx context.Context, id string) error {
	return c.runtime.Back(ctx, id)
}

// Dispatch routes a signal by name. Create is rejected; use Create or Instantiate.
func (c *Coordinator) Dispatch(ctx context.Context, id string, s domain.Signal) error {
	if s == domain.SignalDestroy {
		return c.Destroy(ctx, id)
	}
	return c.runtime.Dispatch(ctx, id, s)
}

// Top returns the foreground container, or nil.
func (c *Coordinator) Top() ports.Container {
	return c.runtime.Top()
}

// Container looks up a live container by unique id.
func (c *Coordinator) Container(id string) (*Container, bool) {
	return c.runtime.Container(id)
}

// Containers returns the live containers in creation order.
func (c *Coordinator) Containers() []ports.Container {
	return c.runtime.Containers()
}

// AttachedTo returns the id of the container attached to engineID.
func (c *Coordinator) AttachedTo(engineID string) (string, bool) {
	return c.runtime.AttachedTo(engineID)
}

// Engines returns the registered engine ids.
func (c *Coordinator) Engines() []string {
	return c.runtime.Engines()
}

// Snapshot returns a consistent view of containers and engine ownership.
func (c *Coordinator) Snapshot() domain.Snapshot {
	return c.runtime.Snapshot()
}

// Pending lists descriptors launched but not yet destroyed.
func (c *Coordinator) Pending(ctx context.Context) ([]string, error) {
	return c.manager.List(ctx)
}

// Logger returns the coordinator's logger.
func (c *Coordinator) Logger() *slog.Logger {
	return c.logger
}
