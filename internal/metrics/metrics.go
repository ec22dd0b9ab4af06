// Package metrics records module lifecycle telemetry with Prometheus.
// A Collector implements engine.Observer and owns its own registry, so
// several runtimes in one process do not collide.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/amdgo/internal/engine"
	"github.com/vk/amdgo/internal/record"
)

// Collector provides runtime metrics collection.
type Collector struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	modules       *prometheus.GaugeVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

var _ engine.Observer = (*Collector)(nil)

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "amd"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "module",
			Name:      "transitions_total",
			Help:      "Total number of module state transitions by target state",
		},
		[]string{"to"},
	)

	c.modules = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "module",
			Name:      "records",
			Help:      "Number of module records currently in each state",
		},
		[]string{"state"},
	)

	c.fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetches_total",
			Help:      "Total number of module source fetches",
		},
		[]string{"result"},
	)

	c.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_duration_seconds",
			Help:      "Time taken to fetch module source",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"result"},
	)

	c.registry.MustRegister(c.transitions, c.modules, c.fetches, c.fetchDuration)
	return c
}

// Transition implements engine.Observer.
func (c *Collector) Transition(id string, from, to record.State) {
	if from != engine.Unregistered {
		c.modules.WithLabelValues(from.String()).Dec()
	}
	c.modules.WithLabelValues(to.String()).Inc()
	c.transitions.WithLabelValues(to.String()).Inc()
}

// Fetched implements engine.Observer.
func (c *Collector) Fetched(id string, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.fetches.WithLabelValues(result).Inc()
	c.fetchDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
