// Package metrics collects and exposes Prometheus metrics for the
// publish pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector is the interface the service layer and background
// workers record against.
type MetricsCollector interface {
	RecordPublishSuccess(network string)
	RecordPublishBusinessFailure(network string)
	RecordPublishTransientFailure(network string)
	RecordPublishLatency(duration time.Duration)
	RecordAccountConnected(network string)
	RecordTokenRefreshed()
	RecordTokenRefreshFailed()
}

// Collector is the Prometheus-backed implementation.
type Collector struct {
	publishSuccess   *prometheus.CounterVec
	publishBusiness  *prometheus.CounterVec
	publishTransient *prometheus.CounterVec
	publishLatency   prometheus.Histogram
	accountConnected *prometheus.CounterVec
	tokenRefreshed   prometheus.Counter
	tokenRefreshFail prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		publishSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialorchestrator_publish_success_total",
			Help: "Variants published successfully, by network.",
		}, []string{"network"}),
		publishBusiness: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialorchestrator_publish_business_failure_total",
			Help: "Variants rejected by the provider (terminal), by network.",
		}, []string{"network"}),
		publishTransient: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialorchestrator_publish_transient_failure_total",
			Help: "Publish attempts that hit a transport failure, by network.",
		}, []string{"network"}),
		publishLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "socialorchestrator_publish_latency_seconds",
			Help:    "Latency of provider publish calls in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		accountConnected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialorchestrator_account_connected_total",
			Help: "Social accounts connected or reconnected, by network.",
		}, []string{"network"}),
		tokenRefreshed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "socialorchestrator_token_refreshed_total",
			Help: "Auth tokens renewed by the maintenance job.",
		}),
		tokenRefreshFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "socialorchestrator_token_refresh_failed_total",
			Help: "Auth token renewals that failed.",
		}),
	}

	reg.MustRegister(
		c.publishSuccess,
		c.publishBusiness,
		c.publishTransient,
		c.publishLatency,
		c.accountConnected,
		c.tokenRefreshed,
		c.tokenRefreshFail,
	)

	return c
}

func (c *Collector) RecordPublishSuccess(network string) {
	c.publishSuccess.WithLabelValues(network).Inc()
}

func (c *Collector) RecordPublishBusinessFailure(network string) {
	c.publishBusiness.WithLabelValues(network).Inc()
}

func (c *Collector) RecordPublishTransientFailure(network string) {
	c.publishTransient.WithLabelValues(network).Inc()
}

func (c *Collector) RecordPublishLatency(duration time.Duration) {
	c.publishLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordAccountConnected(network string) {
	c.accountConnected.WithLabelValues(network).Inc()
}

func (c *Collector) RecordTokenRefreshed() {
	c.tokenRefreshed.Inc()
}

func (c *Collector) RecordTokenRefreshFailed() {
	c.tokenRefreshFail.Inc()
}

// Handler returns the HTTP handler Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute mounts the /metrics endpoint on a standalone mux so it
// can listen on its own address, separate from the API surface.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
