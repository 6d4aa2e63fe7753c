package domain

import (
	"fmt"
	"strings"
)

// LifecycleStage is the position of a container in the host lifecycle.
type LifecycleStage int

const (
	StageCreated LifecycleStage = iota
	StageStarted
	StageResumed
	StagePaused
	StageStopped
	StageDestroyed
)

var stageNames = [...]string{
	StageCreated:   "created",
	StageStarted:   "started",
	StageResumed:   "resumed",
	StagePaused:    "paused",
	StageStopped:   "stopped",
	StageDestroyed: "destroyed",
}

// String returns the lowercase name of the stage.
func (s LifecycleStage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Stages returns every stage in nominal order.
func Stages() []LifecycleStage {
	return []LifecycleStage{StageCreated, StageStarted, StageResumed, StagePaused, StageStopped, StageDestroyed}
}

// ParseStage converts a name (case-insensitive, optional "on_" prefix) into a stage.
func ParseStage(name string) (LifecycleStage, error) {
	n := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "on_")
	for i, s := range stageNames {
		if s == n {
			return LifecycleStage(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStage, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s LifecycleStage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LifecycleStage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
