package lifecycle_test

import (
	"testing"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
)

func TestMachine_NominalOrder(t *testing.T) {
	m := lifecycle.NewMachine()
	assert.Equal(t, domain.StageCreated, m.Stage())

	steps := []struct {
		signal domain.Signal
		want   domain.LifecycleStage
	}{
		{domain.SignalStart, domain.StageStarted},
		{domain.SignalResume, domain.StageResumed},
		{domain.SignalPause, domain.StagePaused},
		{domain.SignalResume, domain.StageResumed},
		{domain.SignalPause, domain.StagePaused},
		{domain.SignalStop, domain.StageStopped},
		{domain.SignalDestroy, domain.StageDestroyed},
	}
	for _, s := range steps {
		assert.Equal(t, s.want, m.Apply(s.signal), "after %s", s.signal)
	}
}

func TestMachine_NeverRejects(t *testing.T) {
	m := lifecycle.NewMachine()

	// Out of nominal order: the host is authoritative.
	assert.Equal(t, domain.StageStopped, m.Apply(domain.SignalStop))
	assert.Equal(t, domain.StageResumed, m.Apply(domain.SignalResume))
	assert.Equal(t, domain.StageCreated, m.Apply(domain.SignalCreate))

	// Back is not a stage transition.
	assert.Equal(t, domain.StageCreated, m.Apply(domain.SignalBack))
}

func TestMachine_IsPausing(t *testing.T) {
	m := lifecycle.NewMachine()
	assert.False(t, m.IsPausing())

	m.Apply(domain.SignalResume)
	assert.False(t, m.IsPausing())

	m.Apply(domain.SignalPause)
	assert.True(t, m.IsPausing())

	m.Apply(domain.SignalStop)
	assert.True(t, m.IsPausing())

	t.Run("Finishing containers are not pausing", func(t *testing.T) {
		m.MarkFinishing()
		assert.True(t, m.IsFinishing())
		assert.False(t, m.IsPausing())
	})
}

func TestStageFor(t *testing.T) {
	_, ok := lifecycle.StageFor(domain.SignalBack)
	assert.False(t, ok)

	stage, ok := lifecycle.StageFor(domain.SignalPause)
	assert.True(t, ok)
	assert.Equal(t, domain.StagePaused, stage)
}
