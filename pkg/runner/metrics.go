package runner

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes live run telemetry on a scrape endpoint. The names here
// are the ones the Prometheus datasource queries after a run.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	activeUsers prometheus.Gauge
	targetUsers prometheus.Gauge
}

// NewMetrics builds an isolated registry so repeated runs in one process
// never collide on registration
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loadrun_requests_total",
			Help: "Requests issued by the load generator, by endpoint and outcome.",
		}, []string{"endpoint", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loadrun_request_duration_seconds",
			Help:    "Request round-trip time by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		activeUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loadrun_active_users",
			Help: "Workers currently running.",
		}),
		targetUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loadrun_target_users",
			Help: "Target concurrency from the load shape.",
		}),
	}

	m.registry.MustRegister(m.requests, m.duration, m.activeUsers, m.targetUsers)

	return m
}

// ObserveRequest records one completed request
func (m *Metrics) ObserveRequest(endpoint string, seconds float64, failed bool) {
	status := "success"
	if failed {
		status = "failure"
	}

	m.requests.WithLabelValues(endpoint, status).Inc()
	m.duration.WithLabelValues(endpoint).Observe(seconds)
}

// SetUsers updates the concurrency gauges
func (m *Metrics) SetUsers(active, target int) {
	m.activeUsers.Set(float64(active))
	m.targetUsers.Set(float64(target))
}

// Serve starts the scrape endpoint in the background and returns the server
// so the caller can shut it down when the run ends
func (m *Metrics) Serve(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("[WARN] Metrics server: %v\n", err)
		}
	}()

	return server
}
