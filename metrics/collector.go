// Package metrics exposes a hit registry to Prometheus.
package metrics

import (
	"github.com/on-the-ground/infrequent_go/guard"
	"github.com/on-the-ground/infrequent_go/hitregistry"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "infrequent"

type Option func(*options)

type options struct {
	namespace string
}

func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// Collector reports call-site counts from a registry and counts violations
// observed through ObserveViolation. It never mutates the registry.
type Collector struct {
	registry *hitregistry.Registry

	callSites  *prometheus.Desc
	hitsTotal  *prometheus.Desc
	violations prometheus.Counter
}

// NewCollector creates a collector for reg.
//
// Example:
//
//	reg := hitregistry.Default()
//	c := metrics.NewCollector(reg)
//	prometheus.MustRegister(c)
//	g := guard.New(guard.WithRegistry(reg), guard.OnViolation(c.ObserveViolation))
func NewCollector(reg *hitregistry.Registry, opts ...Option) *Collector {
	o := options{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(&o)
	}

	return &Collector{
		registry: reg,
		callSites: prometheus.NewDesc(
			prometheus.BuildFQName(o.namespace, "", "call_sites"),
			"Number of distinct call sites recorded",
			nil, nil,
		),
		hitsTotal: prometheus.NewDesc(
			prometheus.BuildFQName(o.namespace, "", "hits_total"),
			"Total number of guarded call site hits",
			nil, nil,
		),
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "violations_total",
			Help:      "Total number of call sites hit more often than allowed",
		}),
	}
}

// ObserveViolation matches guard.OnViolation.
func (c *Collector) ObserveViolation(*guard.FrequencyExceeded) {
	c.violations.Inc()
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.callSites
	ch <- c.hitsTotal
	c.violations.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.registry.Stats()
	ch <- prometheus.MustNewConstMetric(c.callSites, prometheus.GaugeValue, float64(st.Sites))
	ch <- prometheus.MustNewConstMetric(c.hitsTotal, prometheus.CounterValue, float64(st.Hits))
	c.violations.Collect(ch)
}
