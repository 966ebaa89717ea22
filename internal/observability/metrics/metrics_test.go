package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestQueueMetricsObserve(t *testing.T) {
	m := NewQueueMetrics(prometheus.NewRegistry())
	m.ObserveRefresh("ok", true, 0.02)
	m.ObserveRefresh("error", false, 0.5)
	m.ObserveTransition("WaitingRoom", "Triage", "ok")
}

func TestQueueMetricsNilSafe(t *testing.T) {
	var m *QueueMetrics
	m.ObserveRefresh("ok", false, 0.1)
	m.ObserveTransition("Triage", "Questioning", "rejected")
}
