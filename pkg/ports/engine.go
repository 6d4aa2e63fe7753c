package ports

// Engine is a shared rendering backend that containers take turns attaching to.
type Engine interface {
	ID() string
	Renderer() Renderer
	Lifecycle() LifecycleNotifier
}

// Renderer exposes the engine renderer state the coordinator touches.
type Renderer interface {
	// SetDisplayingUI overrides the "UI displayed" flag. Clearing it avoids a
	// stale frame being shown while the next container attaches.
	SetDisplayingUI(displaying bool) error
}

// LifecycleNotifier forwards host lifecycle notices to the engine.
type LifecycleNotifier interface {
	// AppIsResumed tells the engine the application is in the foreground.
	AppIsResumed()
}
