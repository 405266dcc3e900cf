package observability

import (
	"context"
	"errors"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every collector.
const Namespace = "harbor"

// Metrics holds the Prometheus collectors fed by the lifecycle hooks.
type Metrics struct {
	Runs         *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
	Steps        *prometheus.HistogramVec
	NodeVisits   *prometheus.CounterVec
	NodeErrors   *prometheus.CounterVec
	NodeDuration *prometheus.HistogramVec
	Retries      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration, which is handy in tests using testutil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Completed graph runs by outcome.",
		}, []string{"graph", "status"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a graph run.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"graph"}),
		Steps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_steps",
			Help:      "Supersteps executed per run.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 25, 50},
		}, []string{"graph"}),
		NodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "node_visits_total",
			Help:      "Node attempts started.",
		}, []string{"graph", "node"}),
		NodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "node_errors_total",
			Help:      "Node attempts that returned an error, by error group.",
		}, []string{"graph", "node", "kind"}),
		NodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "node_duration_seconds",
			Help:      "Duration of a single node attempt.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"graph", "node"}),
		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "node_retries_total",
			Help:      "Node attempts beyond the first.",
		}, []string{"graph", "node"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Runs, m.RunDuration, m.Steps, m.NodeVisits, m.NodeErrors, m.NodeDuration, m.Retries}
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.Runs.WithLabelValues(e.Graph, status).Inc()
			m.RunDuration.WithLabelValues(e.Graph).Observe(e.Duration.Seconds())
			m.Steps.WithLabelValues(e.Graph).Observe(float64(e.Steps))
		},
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.Graph, e.Node).Inc()
			if e.Attempt > 1 {
				m.Retries.WithLabelValues(e.Graph, e.Node).Inc()
			}
		},
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeDuration.WithLabelValues(e.Graph, e.Node).Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.NodeErrors.WithLabelValues(e.Graph, e.Node, ErrorKind(e.Err)).Inc()
			}
		},
	}
}

// ErrorKind buckets an error into a low-cardinality label value.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration"
	case errors.Is(err, domain.ErrInvocation):
		return "invocation"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "node"
	}
}
