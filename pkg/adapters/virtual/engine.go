package virtual

import (
	"sort"
	"sync"

	"github.com/aretw0/stagehand/pkg/ports"
)

// Engine is an in-memory ports.Engine. It is its own Renderer and LifecycleNotifier.
type Engine struct {
	id      string
	journal *Journal

	mu         sync.Mutex
	displaying bool
	resumed    int
	surfaces   map[string]bool
	displayErr error
}

var (
	_ ports.Engine            = (*Engine)(nil)
	_ ports.Renderer          = (*Engine)(nil)
	_ ports.LifecycleNotifier = (*Engine)(nil)
)

// NewEngine creates an engine recording into journal (which may be nil).
func NewEngine(id string, journal *Journal) *Engine {
	return &Engine{
		id:       id,
		journal:  journal,
		surfaces: make(map[string]bool),
	}
}

func (e *Engine) ID() string                         { return e.id }
func (e *Engine) Renderer() ports.Renderer           { return e }
func (e *Engine) Lifecycle() ports.LifecycleNotifier { return e }

// SetDisplayingUI implements ports.Renderer.
func (e *Engine) SetDisplayingUI(displaying bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.displayErr != nil {
		return e.displayErr
	}
	e.displaying = displaying
	if !displaying {
		e.journal.record(OpUIHidden, "", e.id)
	}
	return nil
}

// FailDisplayFlag makes SetDisplayingUI return err (nil restores normal behaviour).
func (e *Engine) FailDisplayFlag(err error) {
	e.mu.Lock()
	e.displayErr = err
	e.mu.Unlock()
}

// DisplayingUI reports the renderer flag.
func (e *Engine) DisplayingUI() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.displaying
}

// AppIsResumed implements ports.LifecycleNotifier.
func (e *Engine) AppIsResumed() {
	e.mu.Lock()
	e.resumed++
	e.mu.Unlock()
	e.journal.record(OpResumed, "", e.id)
}

// ResumedCount returns how many lifecycle notices the engine received.
func (e *Engine) ResumedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resumed
}

// AttachedSurfaces lists the owners of surfaces currently drawing through the engine.
func (e *Engine) AttachedSurfaces() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.surfaces))
	for owner := range e.surfaces {
		out = append(out, owner)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) addSurface(owner string) {
	e.mu.Lock()
	e.surfaces[owner] = true
	// The first frame of the new surface marks the UI as displayed.
	e.displaying = true
	e.mu.Unlock()
}

func (e *Engine) removeSurface(owner string) {
	e.mu.Lock()
	delete(e.surfaces, owner)
	e.mu.Unlock()
}
