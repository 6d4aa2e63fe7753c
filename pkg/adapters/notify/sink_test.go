package notify_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/stagehand/pkg/adapters/notify"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContainer struct {
	id  string
	url string
}

func (f fakeContainer) URL() (string, error) {
	if f.url == "" {
		return "", domain.ErrMissingURL
	}
	return f.url, nil
}
func (f fakeContainer) URLParams() map[string]any    { return map[string]any{} }
func (f fakeContainer) UniqueID() string             { return f.id }
func (f fakeContainer) CachedEngineID() string       { return domain.DefaultEngineID }
func (f fakeContainer) IsOpaque() bool               { return true }
func (f fakeContainer) IsPausing() bool              { return false }
func (f fakeContainer) Stage() domain.LifecycleStage { return domain.StageResumed }
func (f fakeContainer) Attached() bool               { return false }
func (f fakeContainer) Descriptor() domain.Descriptor {
	return domain.Descriptor{UniqueID: f.id, URL: f.url}
}
func (f fakeContainer) FinishContainer(map[string]any) {}

var _ ports.Container = fakeContainer{}

func TestRecorder(t *testing.T) {
	r := notify.NewRecorder()
	a := fakeContainer{id: "a", url: "/a"}

	r.OnContainerCreated(a)
	r.OnContainerAppeared(a)
	r.OnContainerDisappeared(a)
	r.OnContainerDestroyed(a)

	assert.Equal(t, []string{"created:a", "appeared:a", "disappeared:a", "destroyed:a"}, r.Strings())
	assert.Equal(t, "/a", r.Notifications()[0].URL)
	assert.Equal(t, 1, r.Count(notify.KindAppeared))

	r.Reset()
	assert.Empty(t, r.Notifications())
}

func TestRecorder_PopRouteReply(t *testing.T) {
	r := notify.NewRecorder()
	r.PopReply = errors.New("no route")

	var got error
	called := false
	r.PopRoute(fakeContainer{id: "a"}, func(err error) {
		called = true
		got = err
	})
	require.True(t, called)
	assert.EqualError(t, got, "no route")

	// A nil reply must be tolerated.
	r.PopRoute(fakeContainer{id: "a"}, nil)
	assert.Equal(t, 2, r.Count(notify.KindPopRoute))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := notify.NewLogSink(logger)

	s.OnContainerAppeared(fakeContainer{id: "a", url: "/a"})
	assert.Contains(t, buf.String(), "container appeared")
	assert.Contains(t, buf.String(), "container=a")
	assert.Contains(t, buf.String(), "url=/a")

	replied := false
	s.PopRoute(fakeContainer{id: "b"}, func(err error) {
		replied = true
		assert.NoError(t, err)
	})
	assert.True(t, replied)
}

func TestMulti(t *testing.T) {
	first, second := notify.NewRecorder(), notify.NewRecorder()
	m := notify.Multi{first, second}
	a := fakeContainer{id: "a", url: "/a"}

	m.OnContainerCreated(a)
	m.OnContainerDestroyed(a)

	replies := 0
	m.PopRoute(a, func(error) { replies++ })

	assert.Equal(t, []string{"created:a", "destroyed:a", "pop_route:a"}, first.Strings())
	assert.Equal(t, first.Strings(), second.Strings())
	assert.Equal(t, 1, replies)
}
