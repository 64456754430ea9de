package rollup

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zenith-rollup/settlement/metrics"
)

// Metrics holds all rollup chain metrics.
type Metrics struct {
	BatchesCommitted  prometheus.Counter
	BatchesFinalized  prometheus.Counter
	BatchesReverted   prometheus.Counter
	CommittedIndex    prometheus.Gauge
	FinalizedIndex    prometheus.Gauge
	EnforcedMode      prometheus.Gauge
	ProofVerification prometheus.Histogram
}

// NewMetrics creates rollup metrics on the global registry.
func NewMetrics() *Metrics {
	reg := metrics.NewComponentRegistry("settlement", "rollup")

	return &Metrics{
		BatchesCommitted: reg.NewCounter(prometheus.CounterOpts{
			Name: "batches_committed_total",
			Help: "Total number of batches committed",
		}),
		BatchesFinalized: reg.NewCounter(prometheus.CounterOpts{
			Name: "batches_finalized_total",
			Help: "Total number of batches finalized",
		}),
		BatchesReverted: reg.NewCounter(prometheus.CounterOpts{
			Name: "batches_reverted_total",
			Help: "Total number of committed batches reverted",
		}),
		CommittedIndex: reg.NewGauge(prometheus.GaugeOpts{
			Name: "last_committed_batch_index",
			Help: "Index of the last committed batch",
		}),
		FinalizedIndex: reg.NewGauge(prometheus.GaugeOpts{
			Name: "last_finalized_batch_index",
			Help: "Index of the last finalized batch",
		}),
		EnforcedMode: reg.NewGauge(prometheus.GaugeOpts{
			Name: "enforced_batch_mode",
			Help: "Whether enforced batch mode is active (0 or 1)",
		}),
		ProofVerification: reg.NewHistogram(prometheus.HistogramOpts{
			Name:    "proof_verification_duration_seconds",
			Help:    "Latency of bundle proof verification",
			Buckets: metrics.DurationBuckets,
		}),
	}
}
