package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics captures request and provider metrics for the generation endpoint.
type Metrics interface {
	ObserveRequest(method, route, status string, durationSeconds float64)
	IncProviderCall(provider, outcome string)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) ObserveRequest(string, string, string, float64) {}
func (Noop) IncProviderCall(string, string)                 {}

// Prom implements Metrics backed by Prometheus collectors.
type Prom struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	providerCalls *prometheus.CounterVec
	once          sync.Once
}

// NewProm registers collectors on reg; a nil reg means the default registry.
func NewProm(namespace string, reg prometheus.Registerer) *Prom {
	p := &Prom{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method/route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Provider calls by provider and outcome",
		}, []string{"provider", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p.once.Do(func() {
		reg.MustRegister(p.requests, p.latency, p.providerCalls)
	})
	return p
}

func (p *Prom) ObserveRequest(method, route, status string, durationSeconds float64) {
	p.requests.WithLabelValues(method, route, status).Inc()
	p.latency.WithLabelValues(method, route).Observe(durationSeconds)
}

func (p *Prom) IncProviderCall(provider, outcome string) {
	p.providerCalls.WithLabelValues(provider, outcome).Inc()
}

// Handler returns an HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
