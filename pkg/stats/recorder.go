// Package stats accumulates per-endpoint request outcomes during a load
// run and derives the observed metrics the threshold checker consumes.
package stats

import (
	"sync"
	"time"

	"github.com/loadcart/http-load-runner/pkg/threshold"
)

// Recorder collects request outcomes from concurrent workers. All methods
// are safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	order     []string
	endpoints map[string]*endpointData
}

type endpointData struct {
	latenciesMs []float64
	failures    int
}

func NewRecorder() *Recorder {
	return &Recorder{
		endpoints: make(map[string]*endpointData),
	}
}

// Record stores one request outcome. Failed requests still contribute
// their elapsed time to the latency distribution.
func (r *Recorder) Record(endpoint string, latency time.Duration, failed bool) {
	ms := float64(latency) / float64(time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()

	data, exists := r.endpoints[endpoint]
	if !exists {
		data = &endpointData{}
		r.endpoints[endpoint] = data
		r.order = append(r.order, endpoint)
	}
	data.latenciesMs = append(data.latenciesMs, ms)
	if failed {
		data.failures++
	}
}

// Endpoints lists recorded endpoints in first-seen order.
func (r *Recorder) Endpoints() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Totals returns the request and failure counts across all endpoints.
func (r *Recorder) Totals() (requests, failures int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, data := range r.endpoints {
		requests += len(data.latenciesMs)
		failures += data.failures
	}
	return requests, failures
}

// Snapshot derives the observed metrics for every recorded endpoint.
// The elapsed run time feeds the throughput metric; a non-positive
// elapsed leaves rps at 0.
func (r *Recorder) Snapshot(elapsed time.Duration) threshold.Observed {
	r.mu.Lock()
	defer r.mu.Unlock()

	obs := make(threshold.Observed, len(r.endpoints))
	for name, data := range r.endpoints {
		requests := len(data.latenciesMs)
		if requests == 0 {
			continue
		}

		metrics := threshold.Metrics{
			threshold.MetricRequests:     float64(requests),
			threshold.MetricFailures:     float64(data.failures),
			threshold.MetricErrorRatePct: float64(data.failures) / float64(requests) * 100,
		}

		p, err := CalculatePercentiles(data.latenciesMs)
		if err == nil {
			metrics[threshold.MetricAvgResponseMs] = p.Average
			metrics[threshold.MetricMinResponseMs] = p.Min
			metrics[threshold.MetricMaxResponseMs] = p.Max
			metrics[threshold.MetricP50ResponseMs] = p.P50
			metrics[threshold.MetricP90ResponseMs] = p.P90
			metrics[threshold.MetricP95ResponseMs] = p.P95
			metrics[threshold.MetricP99ResponseMs] = p.P99
		}
		if elapsed > 0 {
			metrics[threshold.MetricRPS] = float64(requests) / elapsed.Seconds()
		}

		obs[name] = metrics
	}
	return obs
}

// Patterns classifies the latency variability of every recorded endpoint.
func (r *Recorder) Patterns() map[string]LatencyPattern {
	r.mu.Lock()
	defer r.mu.Unlock()

	patterns := make(map[string]LatencyPattern, len(r.endpoints))
	for name, data := range r.endpoints {
		patterns[name] = ClassifyLatencyPattern(data.latenciesMs)
	}
	return patterns
}
