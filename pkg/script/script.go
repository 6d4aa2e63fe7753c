package script

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/stagehand"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/launch"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScript is returned by Validate.
var ErrInvalidScript = errors.New("invalid script")

// Script is a replayable signal sequence.
type Script struct {
	Name string             `yaml:"name" json:"name"`
	Host stagehand.HostInfo `yaml:"host" json:"host"`
	// Engines defaults to the shared default engine.
	Engines    []string    `yaml:"engines" json:"engines"`
	Containers []Container `yaml:"containers" json:"containers"`
	Steps      []Step      `yaml:"steps" json:"steps"`
}

// Container declares the creation arguments of one container.
type Container struct {
	ID             string         `yaml:"id" json:"id"`
	URL            string         `yaml:"url" json:"url"`
	Params         map[string]any `yaml:"params" json:"params"`
	EngineID       string         `yaml:"engine_id" json:"engine_id"`
	BackgroundMode string         `yaml:"background_mode" json:"background_mode"`
}

// Step is one host signal.
type Step struct {
	Signal    string       `yaml:"signal" json:"signal"`
	Container string       `yaml:"container" json:"container"`
	Expect    *Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`
	// ExpectError makes the step pass only when the signal fails with this
	// sentinel name (see ErrorName).
	ExpectError string `yaml:"expect_error,omitempty" json:"expect_error,omitempty"`
}

// Expectation is checked against the snapshot taken after the step.
type Expectation struct {
	// Top is the expected foreground container; "-" means none.
	Top string `yaml:"top,omitempty" json:"top,omitempty"`
	// Attached maps engine id to container id; "" means the engine is free.
	Attached map[string]string                `yaml:"attached,omitempty" json:"attached,omitempty"`
	Stages   map[string]domain.LifecycleStage `yaml:"stages,omitempty" json:"stages,omitempty"`
	// Live lists the containers that must be in the registry, in creation order.
	Live []string `yaml:"live,omitempty" json:"live,omitempty"`
}

// Parse decodes a YAML script and validates it.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// EngineIDs returns the declared engines, or the default engine.
func (s *Script) EngineIDs() []string {
	if len(s.Engines) == 0 {
		return []string{domain.DefaultEngineID}
	}
	return s.Engines
}

// Validate reports every structural problem at once.
func (s *Script) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidScript}, args...)...))
	}

	engines := make(map[string]bool)
	for _, id := range s.EngineIDs() {
		if id == "" {
			fail("empty engine id")
		}
		engines[id] = true
	}

	containers := make(map[string]bool)
	for i, c := range s.Containers {
		if c.ID == "" {
			fail("container %d: missing id", i)
			continue
		}
		if containers[c.ID] {
			fail("container %s: duplicate id", c.ID)
		}
		containers[c.ID] = true
		if _, err := c.Descriptor(); err != nil {
			fail("container %s: %v", c.ID, err)
		}
		if c.EngineID != "" && !engines[c.EngineID] {
			fail("container %s: unknown engine %q", c.ID, c.EngineID)
		}
	}

	for i, step := range s.Steps {
		if _, err := domain.ParseSignal(step.Signal); err != nil {
			fail("step %d: %v", i+1, err)
		}
		if !containers[step.Container] && step.ExpectError == "" {
			fail("step %d: unknown container %q", i+1, step.Container)
		}
		if step.Expect == nil {
			continue
		}
		for engine := range step.Expect.Attached {
			if !engines[engine] {
				fail("step %d: expectation names unknown engine %q", i+1, engine)
			}
		}
	}
	return errors.Join(errs...)
}

// Descriptor resolves the container's creation arguments.
func (c Container) Descriptor() (domain.Descriptor, error) {
	mode, err := domain.ParseBackgroundMode(c.BackgroundMode)
	if err != nil {
		return domain.Descriptor{}, err
	}
	b := launch.NewBuilder().
		URL(c.URL).
		UniqueID(c.ID).
		BackgroundMode(mode).
		URLParams(c.Params)
	if c.EngineID != "" {
		b = b.EngineID(c.EngineID)
	}
	return b.Build()
}
