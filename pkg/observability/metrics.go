package observability

import (
	"net/http"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "guide"

// Metrics holds the Prometheus collectors of the engine.
type Metrics struct {
	registry *prometheus.Registry

	SessionsActive  prometheus.Gauge
	SessionsStarted prometheus.Counter
	SessionsEnded   *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
	Rejected        *prometheus.CounterVec
	Overrides       prometheus.Counter
	Rollbacks       prometheus.Counter
	ActionCalls     *prometheus.CounterVec
	ActionDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live session machines",
		}),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of sessions created",
		}),
		SessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Total number of sessions removed, by reason",
		}, []string{"reason"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Total number of accepted transitions, by event",
		}, []string{"event"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_triggers_total",
			Help:      "Total number of events not valid in the current step, by step",
		}, []string{"step"}),
		Overrides: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overrides_total",
			Help:      "Total number of explicit step overrides",
		}),
		Rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollbacks_total",
			Help:      "Total number of rollbacks",
		}),
		ActionCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_calls_total",
			Help:      "Total number of action invocations, by action and status",
		}, []string{"action", "status"}),
		ActionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Duration of action invocations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
	}

	m.registry.MustRegister(
		m.SessionsActive,
		m.SessionsStarted,
		m.SessionsEnded,
		m.Transitions,
		m.Rejected,
		m.Overrides,
		m.Rollbacks,
		m.ActionCalls,
		m.ActionDuration,
	)
	return m
}

// Registry exposes the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(e *domain.SessionEvent) {
			m.SessionsStarted.Inc()
			m.SessionsActive.Inc()
		},
		OnSessionEnd: func(e *domain.SessionEvent) {
			m.SessionsEnded.WithLabelValues(e.Reason).Inc()
			m.SessionsActive.Dec()
		},
		OnStep: func(e *domain.SessionEvent) {
			switch e.Type {
			case domain.EventTransition:
				m.Transitions.WithLabelValues(e.Trigger).Inc()
			case domain.EventRejected:
				m.Rejected.WithLabelValues(e.From).Inc()
			case domain.EventOverride:
				m.Overrides.Inc()
			case domain.EventRollback:
				m.Rollbacks.Inc()
			}
		},
		OnActionReturn: func(e *domain.ActionEvent) {
			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.ActionCalls.WithLabelValues(e.Action, status).Inc()
			m.ActionDuration.WithLabelValues(e.Action).Observe(e.Duration.Seconds())
		},
	}
}
