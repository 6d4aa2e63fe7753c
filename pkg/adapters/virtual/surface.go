package virtual

import (
	"sync"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/ports"
)

// Surface is an in-memory ports.RenderSurface owned by one container.
type Surface struct {
	owner   string
	journal *Journal

	mu     sync.Mutex
	engine ports.Engine
}

// NewSurface creates a detached surface.
func NewSurface(owner string, journal *Journal) *Surface {
	return &Surface{owner: owner, journal: journal}
}

// AttachToEngine implements ports.RenderSurface.
func (s *Surface) AttachToEngine(engine ports.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == engine {
		return
	}
	if s.engine != nil {
		s.detachLocked()
	}
	s.engine = engine
	s.journal.record(OpAttach, s.owner, engine.ID())
	if ve, ok := engine.(*Engine); ok {
		ve.addSurface(s.owner)
	}
}

// DetachFromEngine implements ports.RenderSurface. Repeated calls are no-ops.
func (s *Surface) DetachFromEngine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
}

func (s *Surface) detachLocked() {
	if s.engine == nil {
		return
	}
	s.journal.record(OpDetach, s.owner, s.engine.ID())
	if ve, ok := s.engine.(*Engine); ok {
		ve.removeSurface(s.owner)
	}
	s.engine = nil
}

// EngineID returns the engine the surface draws through, or "".
func (s *Surface) EngineID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return ""
	}
	return s.engine.ID()
}

// Binder is an in-memory ports.ControlSurfaceBinder.
type Binder struct {
	owner   string
	journal *Journal
}

// NewBinder creates a binder whose handles are attributed to owner.
func NewBinder(owner string, journal *Journal) *Binder {
	return &Binder{owner: owner, journal: journal}
}

// BindControlSurface implements ports.ControlSurfaceBinder.
func (b *Binder) BindControlSurface(window ports.HostWindow, engine ports.Engine) ports.ControlSurfaceHandle {
	b.journal.record(OpBind, b.owner, engine.ID())
	return &Handle{owner: b.owner, engine: engine.ID(), journal: b.journal}
}

// Handle is the control surface returned by Binder.
type Handle struct {
	owner   string
	engine  string
	journal *Journal
	once    sync.Once
}

// Release implements ports.ControlSurfaceHandle.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.journal.record(OpRelease, h.owner, h.engine)
	})
}

// Window is an in-memory ports.HostWindow.
type Window struct {
	owner   string
	journal *Journal

	mu       sync.Mutex
	finished bool
	result   map[string]any
}

// NewWindow creates an open window.
func NewWindow(owner string, journal *Journal) *Window {
	return &Window{owner: owner, journal: journal}
}

// Finish implements ports.HostWindow.
func (w *Window) Finish(result map[string]any) {
	w.mu.Lock()
	w.finished = true
	if result != nil {
		w.result = domain.CopyParams(result)
	}
	w.mu.Unlock()
	w.journal.record(OpFinish, w.owner, "")
}

// Finished reports whether Finish was called and the result it received.
func (w *Window) Finished() (bool, map[string]any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finished, w.result
}

// NewSurfaces returns a complete, journaled ports.Surfaces for one container.
func NewSurfaces(owner string, journal *Journal) ports.Surfaces {
	return ports.Surfaces{
		Render:  NewSurface(owner, journal),
		Control: NewBinder(owner, journal),
		Window:  NewWindow(owner, journal),
	}
}
