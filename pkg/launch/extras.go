package launch

import (
	"fmt"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// extras mirrors the bundle keys a host passes to its container factory.
type extras struct {
	CachedEngineID            string         `mapstructure:"cached_engine_id"`
	DestroyEngineWithActivity bool           `mapstructure:"destroy_engine_with_activity"`
	BackgroundMode            string         `mapstructure:"background_mode"`
	URL                       string         `mapstructure:"url"`
	URLParams                 map[string]any `mapstructure:"url_param"`
	UniqueID                  string         `mapstructure:"unique_id"`
	EnableStateRestoration    *bool          `mapstructure:"enable_state_restoration"`
}

// ToExtras encodes a descriptor as a flat bundle.
func ToExtras(d domain.Descriptor) map[string]any {
	m := map[string]any{
		domain.KeyCachedEngineID:        d.EngineID,
		domain.KeyDestroyEngineWithHost: d.DestroyEngineWithContainer,
		domain.KeyBackgroundMode:        string(d.BackgroundMode),
		domain.KeyURL:                   d.URL,
		domain.KeyURLParams:             domain.CopyParams(d.URLParams),
		domain.KeyUniqueID:              d.UniqueID,
	}
	if d.EnableStateRestoration != nil {
		m[domain.KeyEnableStateRestoration] = *d.EnableStateRestoration
	}
	return m
}

// FromExtras decodes a bundle produced by ToExtras or by a host.
// Values are weakly typed ("true", 1) so hand-written bundles decode too.
// A missing url is accepted; the container reports it on query.
func FromExtras(m map[string]any) (domain.Descriptor, error) {
	var e extras
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &e,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return domain.Descriptor{}, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return domain.Descriptor{}, fmt.Errorf("failed to decode extras: %w", err)
	}

	mode, err := domain.ParseBackgroundMode(e.BackgroundMode)
	if err != nil {
		return domain.Descriptor{}, err
	}

	d := domain.Descriptor{
		UniqueID:                   resolveUniqueID(e.UniqueID, e.URL),
		URL:                        e.URL,
		URLParams:                  domain.CopyParams(e.URLParams),
		EngineID:                   e.CachedEngineID,
		BackgroundMode:             mode,
		DestroyEngineWithContainer: e.DestroyEngineWithActivity,
		EnableStateRestoration:     e.EnableStateRestoration,
	}
	if d.EngineID == "" {
		d.EngineID = domain.DefaultEngineID
	}
	return d, nil
}
