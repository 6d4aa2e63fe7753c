package ports

// RenderSurface is the per-container drawing surface.
// Both methods must tolerate repeated calls.
type RenderSurface interface {
	AttachToEngine(engine Engine)
	DetachFromEngine()
}

// ControlSurfaceHandle is the platform control surface bound while a container is attached.
type ControlSurfaceHandle interface {
	Release()
}

// ControlSurfaceBinder binds the platform control surface of a host window to an engine.
type ControlSurfaceBinder interface {
	BindControlSurface(window HostWindow, engine Engine) ControlSurfaceHandle
}

// HostWindow is the host-side object backing a container (an activity, a window...).
type HostWindow interface {
	// Finish closes the window. result is nil when no payload is returned.
	Finish(result map[string]any)
}

// Surfaces bundles the collaborators a container needs to attach.
type Surfaces struct {
	Render  RenderSurface
	Control ControlSurfaceBinder
	// Window is optional; FinishContainer is a local no-op without it.
	Window HostWindow
}
