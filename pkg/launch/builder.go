package launch

import (
	"fmt"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/google/uuid"
)

// Builder accumulates creation arguments for a container.
type Builder struct {
	destroyEngineWithContainer bool
	backgroundMode             domain.BackgroundMode
	url                        string
	params                     map[string]any
	uniqueID                   string
	engineID                   string
	enableStateRestoration     *bool
}

// NewBuilder returns a builder with the defaults: opaque background, shared engine.
func NewBuilder() *Builder {
	return &Builder{
		backgroundMode: domain.BackgroundOpaque,
	}
}

// DestroyEngineWithContainer couples the engine lifetime to the container.
func (b *Builder) DestroyEngineWithContainer(v bool) *Builder {
	b.destroyEngineWithContainer = v
	return b
}

// BackgroundMode sets opaque or transparent rendering.
func (b *Builder) BackgroundMode(m domain.BackgroundMode) *Builder {
	b.backgroundMode = m
	return b
}

// URL sets the navigation target. Required.
func (b *Builder) URL(url string) *Builder {
	b.url = url
	return b
}

// URLParams sets navigation parameters. The map is copied.
func (b *Builder) URLParams(params map[string]any) *Builder {
	b.params = domain.CopyParams(params)
	return b
}

// UniqueID pins the container identity instead of deriving one.
func (b *Builder) UniqueID(id string) *Builder {
	b.uniqueID = id
	return b
}

// EngineID selects a cached engine other than domain.DefaultEngineID.
func (b *Builder) EngineID(id string) *Builder {
	b.engineID = id
	return b
}

// EnableStateRestoration overrides the host default (true).
func (b *Builder) EnableStateRestoration(v bool) *Builder {
	b.enableStateRestoration = &v
	return b
}

// Build resolves the descriptor. It fails with domain.ErrMissingURL when no URL was set.
func (b *Builder) Build() (domain.Descriptor, error) {
	if b.url == "" {
		return domain.Descriptor{}, domain.ErrMissingURL
	}
	mode, err := domain.ParseBackgroundMode(string(b.backgroundMode))
	if err != nil {
		return domain.Descriptor{}, fmt.Errorf("invalid builder: %w", err)
	}

	d := domain.Descriptor{
		UniqueID:                   resolveUniqueID(b.uniqueID, b.url),
		URL:                        b.url,
		URLParams:                  domain.CopyParams(b.params),
		EngineID:                   b.engineID,
		BackgroundMode:             mode,
		DestroyEngineWithContainer: b.destroyEngineWithContainer,
	}
	if d.EngineID == "" {
		d.EngineID = domain.DefaultEngineID
	}
	if b.enableStateRestoration != nil {
		v := *b.enableStateRestoration
		d.EnableStateRestoration = &v
	}
	return d, nil
}

// CreateUniqueID derives a fresh identifier from a URL ("<uuid>_<url>").
// Two calls with the same URL never collide.
func CreateUniqueID(url string) string {
	if url == "" {
		return uuid.NewString()
	}
	return uuid.NewString() + "_" + url
}

func resolveUniqueID(explicit, url string) string {
	if explicit != "" {
		return explicit
	}
	return CreateUniqueID(url)
}
