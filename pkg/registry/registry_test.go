package registry_test

import (
	"testing"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubContainer implements ports.Container with just enough behaviour for the registry.
type stubContainer struct {
	id    string
	stage domain.LifecycleStage
}

func (s *stubContainer) URL() (string, error)           { return "/" + s.id, nil }
func (s *stubContainer) URLParams() map[string]any      { return map[string]any{} }
func (s *stubContainer) UniqueID() string               { return s.id }
func (s *stubContainer) CachedEngineID() string         { return domain.DefaultEngineID }
func (s *stubContainer) IsOpaque() bool                 { return true }
func (s *stubContainer) IsPausing() bool                { return false }
func (s *stubContainer) Stage() domain.LifecycleStage   { return s.stage }
func (s *stubContainer) Attached() bool                 { return false }
func (s *stubContainer) Descriptor() domain.Descriptor  { return domain.Descriptor{UniqueID: s.id} }
func (s *stubContainer) FinishContainer(map[string]any) {}

func ids(t *testing.T, r *registry.Registry) []string {
	t.Helper()
	var out []string
	for _, c := range r.Containers() {
		out = append(out, c.UniqueID())
	}
	return out
}

func TestRegistry_PushAndTop(t *testing.T) {
	r := registry.NewRegistry()
	a := &stubContainer{id: "a"}
	b := &stubContainer{id: "b"}

	require.NoError(t, r.Push(a))
	require.NoError(t, r.Push(b))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"a", "b"}, ids(t, r))

	// Nothing has been activated yet.
	assert.Nil(t, r.Top())

	require.NoError(t, r.Activate("a"))
	assert.Equal(t, "a", r.Top().UniqueID())

	require.NoError(t, r.Activate("b"))
	assert.Equal(t, "b", r.Top().UniqueID())
	assert.True(t, r.IsTop("b"))

	// Re-activating moves a to the top without changing membership order.
	require.NoError(t, r.Activate("a"))
	assert.Equal(t, "a", r.Top().UniqueID())
	assert.Equal(t, []string{"a", "b"}, ids(t, r))
	assert.Len(t, r.Active(), 2)
}

func TestRegistry_DuplicateID(t *testing.T) {
	r := registry.NewRegistry()
	require.NoError(t, r.Push(&stubContainer{id: "x"}))

	err := r.Push(&stubContainer{id: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicateContainer)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_TopSkipsDestroyed(t *testing.T) {
	r := registry.NewRegistry()
	a := &stubContainer{id: "a"}
	b := &stubContainer{id: "b"}
	require.NoError(t, r.Push(a))
	require.NoError(t, r.Push(b))
	require.NoError(t, r.Activate("a"))
	require.NoError(t, r.Activate("b"))

	b.stage = domain.StageDestroyed
	assert.Equal(t, "a", r.Top().UniqueID())
}

func TestRegistry_Remove(t *testing.T) {
	r := registry.NewRegistry()
	require.NoError(t, r.Push(&stubContainer{id: "a"}))
	require.NoError(t, r.Activate("a"))

	c, ok := r.Remove("a")
	assert.True(t, ok)
	assert.Equal(t, "a", c.UniqueID())
	assert.Nil(t, r.Top())
	assert.Equal(t, 0, r.Len())

	_, ok = r.Remove("a")
	assert.False(t, ok)

	_, ok = r.Get("a")
	assert.False(t, ok)

	assert.ErrorIs(t, r.Activate("a"), domain.ErrContainerNotFound)
}
