package observability_test

import (
	"context"
	"testing"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnSignal(ctx, &domain.ContainerEvent{Signal: domain.SignalResume, EngineID: "e"})
	hooks.OnSignal(ctx, &domain.ContainerEvent{Signal: domain.SignalResume, EngineID: "e"})
	hooks.OnSuppressed(ctx, &domain.ContainerEvent{Signal: domain.SignalPause, EngineID: "e"})
	hooks.OnAttach(ctx, &domain.ContainerEvent{EngineID: "e"})
	hooks.OnDetach(ctx, &domain.ContainerEvent{EngineID: "e"})
	hooks.OnAttach(ctx, &domain.ContainerEvent{EngineID: "e"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Signals.WithLabelValues("resume")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Suppressed.WithLabelValues("pause")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Attaches.WithLabelValues("e")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Detaches.WithLabelValues("e")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Attached.WithLabelValues("e")))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestMetrics_NilRegisterer(t *testing.T) {
	m := observability.NewMetrics(nil)
	m.Hooks().OnAttach(context.Background(), &domain.ContainerEvent{EngineID: "e"})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Attached.WithLabelValues("e")))
}
