package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for workflow execution:
//
//   - inflight_handlers: executors currently executing across all runs
//   - queue_depth: deliveries waiting in run frontiers
//   - handler_latency_ms: executor invocation duration histogram
//   - runs_total: finished runs by outcome (completed, failed)
//   - yields_total: terminal outputs produced
//
// All metrics are updated automatically by the Runner when attached via
// WithMetrics.
type Metrics struct {
	inflightHandlers prometheus.Gauge
	queueDepth       prometheus.Gauge
	handlerLatency   *prometheus.HistogramVec
	runsTotal        *prometheus.CounterVec
	yieldsTotal      prometheus.Counter
}

// NewMetrics registers the workflow metrics with the given registry. A nil
// registry uses the default Prometheus registerer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		inflightHandlers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "agentflow",
			Name:      "inflight_handlers",
			Help:      "Current number of executor handlers running concurrently",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "agentflow",
			Name:      "queue_depth",
			Help:      "Deliveries waiting for a worker across all active runs",
		}),
		handlerLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agentflow",
			Name:      "handler_latency_ms",
			Help:      "Executor invocation duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"executor", "status"}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentflow",
			Name:      "runs_total",
			Help:      "Finished runs by outcome",
		}, []string{"outcome"}),
		yieldsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agentflow",
			Name:      "yields_total",
			Help:      "Terminal outputs yielded across all runs",
		}),
	}
}
