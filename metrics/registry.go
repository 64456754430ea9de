package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registryOnce   sync.Once
	globalRegistry *prometheus.Registry
)

// GetRegistry returns the process-wide registry served by the /metrics
// endpoint. Go runtime and process collectors are attached on first use.
func GetRegistry() *prometheus.Registry {
	registryOnce.Do(func() {
		globalRegistry = prometheus.NewRegistry()
		globalRegistry.MustRegister(collectors.NewGoCollector())
		globalRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	return globalRegistry
}

// ComponentRegistry manages metrics for a specific component.
type ComponentRegistry struct {
	namespace string
	subsystem string
	factory   promauto.Factory
}

// NewComponentRegistry creates a registry for a component. All metrics
// created through it share the component namespace/subsystem and land in
// the global registry.
func NewComponentRegistry(namespace, subsystem string) *ComponentRegistry {
	return &ComponentRegistry{
		namespace: namespace,
		subsystem: subsystem,
		factory:   promauto.With(GetRegistry()),
	}
}

// NewCounter creates a new counter with proper naming.
func (r *ComponentRegistry) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	opts.Namespace = r.namespace
	opts.Subsystem = r.subsystem
	return r.factory.NewCounter(opts)
}

// NewCounterVec creates a new counter vector with proper naming.
func (r *ComponentRegistry) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	opts.Namespace = r.namespace
	opts.Subsystem = r.subsystem
	return r.factory.NewCounterVec(opts, labelNames)
}

// NewGauge creates a new gauge with proper naming.
func (r *ComponentRegistry) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	opts.Namespace = r.namespace
	opts.Subsystem = r.subsystem
	return r.factory.NewGauge(opts)
}

// NewGaugeVec creates a new gauge vector with proper naming.
func (r *ComponentRegistry) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	opts.Namespace = r.namespace
	opts.Subsystem = r.subsystem
	return r.factory.NewGaugeVec(opts, labelNames)
}

// NewHistogram creates a new histogram with proper naming.
func (r *ComponentRegistry) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	opts.Namespace = r.namespace
	opts.Subsystem = r.subsystem
	return r.factory.NewHistogram(opts)
}

// NewHistogramVec creates a new histogram vector with proper naming.
func (r *ComponentRegistry) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string,
) *prometheus.HistogramVec {
	opts.Namespace = r.namespace
	opts.Subsystem = r.subsystem
	return r.factory.NewHistogramVec(opts, labelNames)
}
