// Package metrics exposes Prometheus metrics for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BuildInfo labels the app_build_info gauge.
type BuildInfo struct {
	Version  string
	Revision string
}

// Import outcomes.
const (
	OutcomeInserted = "inserted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Provider owns the service registry and its collectors.
type Provider struct {
	reg           *prometheus.Registry
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	importedTotal *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New(build BuildInfo) *Provider {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build info for this binary (value is always 1).",
		},
		[]string{"version", "revision"},
	)
	if build.Version == "" {
		build.Version = "dev"
	}
	info.WithLabelValues(build.Version, build.Revision).Set(1)

	p := &Provider{
		reg: reg,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"method", "route", "status"},
		),
		importedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campsites_imported_total",
				Help: "Campsite rows processed by CSV uploads, by outcome.",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(info, p.requests, p.duration, p.importedTotal)
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request. route is the matched route
// template, never the raw path.
func (p *Provider) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	st := strconv.Itoa(status)
	p.requests.WithLabelValues(method, route, st).Inc()
	p.duration.WithLabelValues(method, route, st).Observe(elapsed.Seconds())
}

// ObserveImport counts rows handled by a CSV upload.
func (p *Provider) ObserveImport(outcome string, rows int) {
	if rows <= 0 {
		return
	}
	p.importedTotal.WithLabelValues(outcome).Add(float64(rows))
}
