// Package metrics owns the process prometheus registry and its http exposure
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric the bot exports
const Namespace = "shamewizard"

// Registry wraps a private prometheus registry so tests never touch the
// global default one
type Registry struct {
	reg *prometheus.Registry
}

// New returns a registry preloaded with the go runtime and process collectors
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{reg: reg}
}

// NewBare returns an empty registry, handy in tests
func NewBare() *Registry { return &Registry{reg: prometheus.NewRegistry()} }

// Registerer exposes the registry for collectors
func (r *Registry) Registerer() prometheus.Registerer { return r.reg }

// Gatherer exposes the registry for scraping and tests
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the text exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Counter registers a namespaced counter vec
func (r *Registry) Counter(name, help string, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	}, labels)
	r.reg.MustRegister(c)
	return c
}

// Gauge registers a namespaced gauge
func (r *Registry) Gauge(name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	})
	r.reg.MustRegister(g)
	return g
}

// Histogram registers a namespaced histogram vec with default buckets
func (r *Registry) Histogram(name, help string, labels ...string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.DefBuckets,
	}, labels)
	r.reg.MustRegister(h)
	return h
}
