package lifecycle

import (
	"sync"

	"github.com/aretw0/stagehand/pkg/domain"
)

// StageFor maps a signal to the stage it moves a container into.
// The back signal has no stage and reports false.
func StageFor(s domain.Signal) (domain.LifecycleStage, bool) {
	switch s {
	case domain.SignalCreate:
		return domain.StageCreated, true
	case domain.SignalStart:
		return domain.StageStarted, true
	case domain.SignalResume:
		return domain.StageResumed, true
	case domain.SignalPause:
		return domain.StagePaused, true
	case domain.SignalStop:
		return domain.StageStopped, true
	case domain.SignalDestroy:
		return domain.StageDestroyed, true
	}
	return 0, false
}

// Machine holds the lifecycle stage of one container.
// Safe for concurrent use.
type Machine struct {
	mu        sync.RWMutex
	stage     domain.LifecycleStage
	finishing bool
}

// NewMachine returns a machine in the created stage.
func NewMachine() *Machine {
	return &Machine{stage: domain.StageCreated}
}

// Apply moves the machine to the stage implied by s and returns the resulting stage.
func (m *Machine) Apply(s domain.Signal) domain.LifecycleStage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if next, ok := StageFor(s); ok {
		m.stage = next
	}
	return m.stage
}

// Stage returns the current stage.
func (m *Machine) Stage() domain.LifecycleStage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stage
}

// MarkFinishing records that the container has been asked to close.
func (m *Machine) MarkFinishing() {
	m.mu.Lock()
	m.finishing = true
	m.mu.Unlock()
}

// IsFinishing reports whether MarkFinishing was called.
func (m *Machine) IsFinishing() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.finishing
}

// IsPausing is true while paused or stopped, unless the container is finishing.
func (m *Machine) IsPausing() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (m.stage == domain.StagePaused || m.stage == domain.StageStopped) && !m.finishing
}

// Transitions lists the nominal edges of the lifecycle, including the
// repeatable resumed/paused loop. Used for documentation and graphs.
func Transitions() [][2]domain.LifecycleStage {
	return [][2]domain.LifecycleStage{
		{domain.StageCreated, domain.StageStarted},
		{domain.StageStarted, domain.StageResumed},
		{domain.StageResumed, domain.StagePaused},
		{domain.StagePaused, domain.StageResumed},
		{domain.StagePaused, domain.StageStopped},
		{domain.StageStopped, domain.StageStarted},
		{domain.StageStopped, domain.StageDestroyed},
	}
}
