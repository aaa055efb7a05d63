// Package metrics expõe os eventos do núcleo como métricas Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aryan55254/Heritage/internal/core/domain"
	"github.com/aryan55254/Heritage/internal/core/ports"
)

type Prometheus struct {
	registry    *prometheus.Registry
	rateLimits  *prometheus.CounterVec
	completions *prometheus.CounterVec
	latency     prometheus.Histogram
	storeErrors *prometheus.CounterVec
}

var _ ports.Metrics = (*Prometheus)(nil)

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		rateLimits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heritage_rate_limit_decisions_total",
			Help: "Rate limit decisions by action and outcome.",
		}, []string{"action", "allowed"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heritage_completion_calls_total",
			Help: "Calls to the completion API by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "heritage_completion_duration_seconds",
			Help:    "Completion API latency in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heritage_store_errors_total",
			Help: "Key-value store failures by operation.",
		}, []string{"operation"}),
	}

	p.registry.MustRegister(
		p.rateLimits,
		p.completions,
		p.latency,
		p.storeErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) ObserveRateLimit(action domain.Action, allowed bool) {
	p.rateLimits.WithLabelValues(string(action), strconv.FormatBool(allowed)).Inc()
}

func (p *Prometheus) ObserveCompletion(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.completions.WithLabelValues(outcome).Inc()
	p.latency.Observe(duration.Seconds())
}

func (p *Prometheus) ObserveStoreError(operation string) {
	p.storeErrors.WithLabelValues(operation).Inc()
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
