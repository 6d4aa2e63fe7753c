package runtime

import (
	"fmt"
	"sync"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/lifecycle"
	"github.com/aretw0/stagehand/pkg/ports"
)

// Container is one navigable screen instance competing for engine attachment.
// Its identity is fixed at creation; its stage is driven by host signals and its
// attachment is changed only by the Coordinator.
type Container struct {
	desc     domain.Descriptor
	machine  *lifecycle.Machine
	surfaces ports.Surfaces
	engine   ports.Engine

	mu     sync.RWMutex
	handle ports.ControlSurfaceHandle
	result map[string]any
}

var _ ports.Container = (*Container)(nil)

func newContainer(desc domain.Descriptor, engine ports.Engine, surfaces ports.Surfaces) *Container {
	return &Container{
		desc:     desc,
		machine:  lifecycle.NewMachine(),
		surfaces: surfaces,
		engine:   engine,
	}
}

// URL returns domain.ErrMissingURL when the container was created without one.
func (c *Container) URL() (string, error) {
	if c.desc.URL == "" {
		return "", fmt.Errorf("container %s: %w", c.desc.UniqueID, domain.ErrMissingURL)
	}
	return c.desc.URL, nil
}

func (c *Container) URLParams() map[string]any {
	return domain.CopyParams(c.desc.URLParams)
}

func (c *Container) UniqueID() string       { return c.desc.UniqueID }
func (c *Container) CachedEngineID() string { return c.desc.EngineID }
func (c *Container) IsOpaque() bool         { return c.desc.IsOpaque() }
func (c *Container) IsPausing() bool        { return c.machine.IsPausing() }
func (c *Container) IsFinishing() bool      { return c.machine.IsFinishing() }

func (c *Container) Stage() domain.LifecycleStage {
	return c.machine.Stage()
}

// Descriptor returns a copy of the creation arguments.
func (c *Container) Descriptor() domain.Descriptor {
	return c.desc.Clone()
}

// ShouldRestoreAndSaveState defaults to true.
func (c *Container) ShouldRestoreAndSaveState() bool {
	return c.desc.ShouldRestoreAndSaveState()
}

// DestroyEngineWithContainer is read by hosts that own engine lifetime.
func (c *Container) DestroyEngineWithContainer() bool {
	return c.desc.DestroyEngineWithContainer
}

// Attached reports whether the container holds a control surface on its engine.
func (c *Container) Attached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handle != nil
}

// FinishContainer marks the container as finishing and asks the host window to close.
// A non-nil result is copied and handed to whoever launched the container.
func (c *Container) FinishContainer(result map[string]any) {
	c.machine.MarkFinishing()

	var payload map[string]any
	if result != nil {
		payload = domain.CopyParams(result)
		c.mu.Lock()
		c.result = payload
		c.mu.Unlock()
	}
	if c.surfaces.Window != nil {
		c.surfaces.Window.Finish(payload)
	}
}

// Result returns the payload passed to FinishContainer, if any.
func (c *Container) Result() (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.result == nil {
		return nil, false
	}
	return domain.CopyParams(c.result), true
}

func (c *Container) String() string {
	return fmt.Sprintf("%s(%s, %s)", c.desc.UniqueID, c.desc.URL, c.machine.Stage())
}

// bind attaches the control surface then the render surface.
// Returns false when the container was already attached.
func (c *Container) bind() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != nil {
		return false
	}
	handle := c.surfaces.Control.BindControlSurface(c.surfaces.Window, c.engine)
	if handle == nil {
		handle = noopHandle{}
	}
	c.surfaces.Render.AttachToEngine(c.engine)
	c.handle = handle
	return true
}

// unbind detaches the render surface and releases the control surface.
// Returns false when the container was not attached.
func (c *Container) unbind() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return false
	}
	c.surfaces.Render.DetachFromEngine()
	c.handle.Release()
	c.handle = nil
	return true
}

type noopHandle struct{}

func (noopHandle) Release() {}
