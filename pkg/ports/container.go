package ports

import "github.com/aretw0/stagehand/pkg/domain"

// Container is the public query surface of a live screen container.
type Container interface {
	// URL returns domain.ErrMissingURL when the container was created without one.
	URL() (string, error)
	URLParams() map[string]any
	UniqueID() string
	CachedEngineID() string
	IsOpaque() bool
	IsPausing() bool
	Stage() domain.LifecycleStage
	// Attached reports whether the container currently owns its engine's surfaces.
	Attached() bool
	Descriptor() domain.Descriptor
	// FinishContainer closes the container, optionally handing result to whoever launched it.
	FinishContainer(result map[string]any)
}
