package queue

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zenith-rollup/settlement/metrics"
)

// Metrics holds all message-queue metrics.
type Metrics struct {
	MessagesTotal   prometheus.Counter
	FinalizedTotal  prometheus.Counter
	PendingMessages prometheus.Gauge
}

// NewMetrics creates queue metrics on the global registry.
func NewMetrics() *Metrics {
	reg := metrics.NewComponentRegistry("settlement", "queue")

	return &Metrics{
		MessagesTotal: reg.NewCounter(prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total number of messages appended to the queue",
		}),
		FinalizedTotal: reg.NewCounter(prometheus.CounterOpts{
			Name: "messages_finalized_total",
			Help: "Total number of queue messages finalized",
		}),
		PendingMessages: reg.NewGauge(prometheus.GaugeOpts{
			Name: "messages_pending",
			Help: "Number of appended but unfinalized messages",
		}),
	}
}
