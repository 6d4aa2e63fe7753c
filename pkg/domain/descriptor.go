package domain

import (
	"fmt"
	"strings"
)

// BackgroundMode decides whether a container is considered opaque when ordering attachments.
type BackgroundMode string

const (
	BackgroundOpaque      BackgroundMode = "opaque"
	BackgroundTransparent BackgroundMode = "transparent"
)

// ParseBackgroundMode validates a background mode name. Empty means opaque.
func ParseBackgroundMode(name string) (BackgroundMode, error) {
	switch BackgroundMode(strings.ToLower(strings.TrimSpace(name))) {
	case "", BackgroundOpaque:
		return BackgroundOpaque, nil
	case BackgroundTransparent:
		return BackgroundTransparent, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackgroundMode, name)
}

// Descriptor holds the creation arguments of a container.
// It is resolved once (see launch.Builder) and never mutated afterwards.
type Descriptor struct {
	UniqueID                   string         `json:"unique_id" yaml:"unique_id" mapstructure:"unique_id"`
	URL                        string         `json:"url" yaml:"url" mapstructure:"url"`
	URLParams                  map[string]any `json:"url_params,omitempty" yaml:"url_params,omitempty" mapstructure:"url_params"`
	EngineID                   string         `json:"engine_id" yaml:"engine_id" mapstructure:"engine_id"`
	BackgroundMode             BackgroundMode `json:"background_mode" yaml:"background_mode" mapstructure:"background_mode"`
	DestroyEngineWithContainer bool           `json:"destroy_engine_with_container" yaml:"destroy_engine_with_container" mapstructure:"destroy_engine_with_container"`
	// EnableStateRestoration is nil when the host did not specify it.
	EnableStateRestoration *bool `json:"enable_state_restoration,omitempty" yaml:"enable_state_restoration,omitempty" mapstructure:"enable_state_restoration"`
}

// IsOpaque reports whether the container draws an opaque background.
func (d Descriptor) IsOpaque() bool {
	return d.BackgroundMode != BackgroundTransparent
}

// ShouldRestoreAndSaveState defaults to true when the flag is unset.
func (d Descriptor) ShouldRestoreAndSaveState() bool {
	if d.EnableStateRestoration == nil {
		return true
	}
	return *d.EnableStateRestoration
}

// Clone returns a copy that shares no mutable state with d.
func (d Descriptor) Clone() Descriptor {
	c := d
	c.URLParams = CopyParams(d.URLParams)
	if d.EnableStateRestoration != nil {
		v := *d.EnableStateRestoration
		c.EnableStateRestoration = &v
	}
	return c
}

// CopyParams makes a shallow copy of a parameter map. A nil map yields an empty one.
func CopyParams(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
