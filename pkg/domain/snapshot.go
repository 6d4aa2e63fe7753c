package domain

// ContainerInfo is a point-in-time view of one live container.
type ContainerInfo struct {
	UniqueID       string         `json:"unique_id" yaml:"unique_id"`
	URL            string         `json:"url,omitempty" yaml:"url,omitempty"`
	URLParams      map[string]any `json:"url_params,omitempty" yaml:"url_params,omitempty"`
	EngineID       string         `json:"engine_id" yaml:"engine_id"`
	BackgroundMode BackgroundMode `json:"background_mode" yaml:"background_mode"`
	Stage          LifecycleStage `json:"stage" yaml:"stage"`
	Pausing        bool           `json:"pausing" yaml:"pausing"`
	Attached       bool           `json:"attached" yaml:"attached"`
	Top            bool           `json:"top" yaml:"top"`
}

// Snapshot is a consistent view of the registry and engine ownership.
type Snapshot struct {
	// Top is the unique id of the foreground container, or empty.
	Top string `json:"top,omitempty" yaml:"top,omitempty"`
	// Containers are listed in creation order.
	Containers []ContainerInfo `json:"containers" yaml:"containers"`
	// Owners maps every engine id to its attached container id ("" when free).
	Owners map[string]string `json:"owners" yaml:"owners"`
}

// Find returns the container with the given id.
func (s Snapshot) Find(id string) (ContainerInfo, bool) {
	for _, c := range s.Containers {
		if c.UniqueID == id {
			return c, true
		}
	}
	return ContainerInfo{}, false
}
