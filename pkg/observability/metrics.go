package observability

import (
	"context"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors fed by coordinator hooks.
type Metrics struct {
	Signals    *prometheus.CounterVec
	Suppressed *prometheus.CounterVec
	Attaches   *prometheus.CounterVec
	Detaches   *prometheus.CounterVec
	Attached   *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg (skipped when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagehand_signals_total",
				Help: "Host lifecycle signals applied to containers",
			},
			[]string{"signal"},
		),
		Suppressed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagehand_signals_suppressed_total",
				Help: "Host lifecycle signals ignored as spurious",
			},
			[]string{"signal"},
		),
		Attaches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagehand_attach_total",
				Help: "Containers attached to an engine",
			},
			[]string{"engine_id"},
		),
		Detaches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagehand_detach_total",
				Help: "Containers detached from an engine",
			},
			[]string{"engine_id"},
		),
		Attached: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stagehand_attached_containers",
				Help: "Containers currently attached, per engine (never above 1)",
			},
			[]string{"engine_id"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Signals, m.Suppressed, m.Attaches, m.Detaches, m.Attached)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSignal: func(ctx context.Context, e *domain.ContainerEvent) {
			m.Signals.WithLabelValues(string(e.Signal)).Inc()
		},
		OnSuppressed: func(ctx context.Context, e *domain.ContainerEvent) {
			m.Suppressed.WithLabelValues(string(e.Signal)).Inc()
		},
		OnAttach: func(ctx context.Context, e *domain.ContainerEvent) {
			m.Attaches.WithLabelValues(e.EngineID).Inc()
			m.Attached.WithLabelValues(e.EngineID).Inc()
		},
		OnDetach: func(ctx context.Context, e *domain.ContainerEvent) {
			m.Detaches.WithLabelValues(e.EngineID).Inc()
			m.Attached.WithLabelValues(e.EngineID).Dec()
		},
	}
}
