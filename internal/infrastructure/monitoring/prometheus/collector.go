// Package prometheus exposes the engine's operational metrics.
package prometheus

import (
	"net/http"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// defaultDurationBuckets covers both HTTP handling and valuation computes,
// which can block on the external appraisal call.
var defaultDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Collector registers metrics lazily by name so application services can
// record through a narrow IncCounter/ObserveHistogram port without importing
// prometheus. The label-key set of a metric is fixed by its first use.
type Collector struct {
	registry   *prometheus.Registry
	namespace  string
	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewCollector constructs a Collector with its own registry, pre-loaded with
// the standard process and Go runtime collectors.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Collector{
		registry:   registry,
		namespace:  namespace,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

// Handler returns the scrape endpoint handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// IncCounter increments the named counter by one.
func (c *Collector) IncCounter(name string, labels map[string]string) {
	keys, values := splitLabels(labels)

	c.mu.Lock()
	vec, ok := c.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      name,
			Help:      name,
		}, keys)
		c.registry.MustRegister(vec)
		c.counters[name] = vec
	}
	c.mu.Unlock()

	vec.WithLabelValues(values...).Inc()
}

// ObserveHistogram records an observation on the named histogram.
func (c *Collector) ObserveHistogram(name string, value float64, labels map[string]string) {
	keys, values := splitLabels(labels)

	c.mu.Lock()
	vec, ok := c.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: c.namespace,
			Name:      name,
			Help:      name,
			Buckets:   defaultDurationBuckets,
		}, keys)
		c.registry.MustRegister(vec)
		c.histograms[name] = vec
	}
	c.mu.Unlock()

	vec.WithLabelValues(values...).Observe(value)
}

// SetGauge sets the named gauge to value.
func (c *Collector) SetGauge(name string, value float64, labels map[string]string) {
	keys, values := splitLabels(labels)

	c.mu.Lock()
	vec, ok := c.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      name,
			Help:      name,
		}, keys)
		c.registry.MustRegister(vec)
		c.gauges[name] = vec
	}
	c.mu.Unlock()

	vec.WithLabelValues(values...).Set(value)
}

// splitLabels returns label keys sorted for a stable registration order, with
// values in matching positions.
func splitLabels(labels map[string]string) ([]string, []string) {
	if len(labels) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = labels[k]
	}
	return keys, values
}
