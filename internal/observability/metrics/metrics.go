package metrics

import "github.com/prometheus/client_golang/prometheus"

// QueueMetrics exposes counters/histograms for queue synchronization and
// stage transitions.
type QueueMetrics struct {
	refreshTotal     *prometheus.CounterVec
	refreshLatency   *prometheus.HistogramVec
	transitionsTotal *prometheus.CounterVec
}

func NewQueueMetrics(reg prometheus.Registerer) *QueueMetrics {
	m := &QueueMetrics{
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicflow",
			Subsystem: "queue",
			Name:      "refresh_total",
			Help:      "Total snapshot refreshes against the healthcare backend",
		}, []string{"result", "silent"}),
		refreshLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicflow",
			Subsystem: "queue",
			Name:      "refresh_latency_seconds",
			Help:      "Latency of full snapshot refreshes",
			Buckets:   prometheus.DefBuckets,
		}, []string{"silent"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicflow",
			Subsystem: "queue",
			Name:      "stage_transitions_total",
			Help:      "Total attempted patient stage transitions",
		}, []string{"from", "to", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.refreshTotal, m.refreshLatency, m.transitionsTotal)
	return m
}

func (m *QueueMetrics) ObserveRefresh(result string, silent bool, seconds float64) {
	if m == nil {
		return
	}
	label := "false"
	if silent {
		label = "true"
	}
	m.refreshTotal.WithLabelValues(result, label).Inc()
	m.refreshLatency.WithLabelValues(label).Observe(seconds)
}

func (m *QueueMetrics) ObserveTransition(from, to, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to, outcome).Inc()
}
