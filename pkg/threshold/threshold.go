// Package threshold compares observed per-endpoint statistics against
// configured limits and reports every exceedance. Checking is a pure query
// over two mappings; absence of data is never a failure.
package threshold

import (
	"fmt"
)

// Metric names shared by the stats recorder, scenario files, and the
// Prometheus datasource.
const (
	MetricRequests      = "requests"
	MetricFailures      = "failures"
	MetricErrorRatePct  = "error_rate_pct"
	MetricAvgResponseMs = "avg_response_time_ms"
	MetricMinResponseMs = "min_response_time_ms"
	MetricMaxResponseMs = "max_response_time_ms"
	MetricP50ResponseMs = "p50_response_time_ms"
	MetricP90ResponseMs = "p90_response_time_ms"
	MetricP95ResponseMs = "p95_response_time_ms"
	MetricP99ResponseMs = "p99_response_time_ms"
	MetricRPS           = "rps"
)

// Default limits applied when a scenario declares no thresholds.
const (
	DefaultP95LimitMs        = 2000
	DefaultErrorRateLimitPct = 5
)

// Limit is a ceiling for one named metric. Observations strictly above
// Max violate; exact equality passes.
type Limit struct {
	Metric string
	Max    float64
}

// EndpointLimits groups the limits configured for one endpoint.
type EndpointLimits struct {
	Endpoint string
	Limits   []Limit
}

// Spec is the full set of configured limits. It is slice-backed so that
// checking iterates in configuration order and output is reproducible.
type Spec []EndpointLimits

// Metrics holds the named numeric values measured for one endpoint.
type Metrics map[string]float64

// Observed maps endpoint names to their measured metrics. Endpoints or
// metrics missing from the map read as 0.
type Observed map[string]Metrics

// Violation records one endpoint metric that exceeded its limit.
type Violation struct {
	Endpoint string
	Metric   string
	Observed float64
	Limit    float64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s %.2f exceeds limit %.2f", v.Endpoint, v.Metric, v.Observed, v.Limit)
}

// Check returns one violation per endpoint/metric pair whose observed
// value strictly exceeds its configured limit. Data missing from obs
// counts as 0 and therefore never violates a non-negative limit. The
// result follows the spec's declaration order; an empty result means
// every threshold is satisfied.
func Check(obs Observed, spec Spec) []Violation {
	var violations []Violation
	for _, ep := range spec {
		for _, limit := range ep.Limits {
			value := obs[ep.Endpoint][limit.Metric]
			if value > limit.Max {
				violations = append(violations, Violation{
					Endpoint: ep.Endpoint,
					Metric:   limit.Metric,
					Observed: value,
					Limit:    limit.Max,
				})
			}
		}
	}
	return violations
}

// DefaultLimits returns the limits applied to an endpoint when the caller
// configures none.
func DefaultLimits() []Limit {
	return []Limit{
		{Metric: MetricP95ResponseMs, Max: DefaultP95LimitMs},
		{Metric: MetricErrorRatePct, Max: DefaultErrorRateLimitPct},
	}
}

// DefaultSpecFor builds a spec that applies the default limits to each of
// the given endpoints, in the order given.
func DefaultSpecFor(endpoints []string) Spec {
	spec := make(Spec, 0, len(endpoints))
	for _, ep := range endpoints {
		spec = append(spec, EndpointLimits{Endpoint: ep, Limits: DefaultLimits()})
	}
	return spec
}

// Validate rejects negative limits, empty names, and duplicate endpoint
// or metric entries. A limit of zero is legal: any positive observation
// violates it.
func (s Spec) Validate() error {
	seenEndpoint := make(map[string]bool)
	for _, ep := range s {
		if ep.Endpoint == "" {
			return fmt.Errorf("threshold spec: endpoint name is required")
		}
		if seenEndpoint[ep.Endpoint] {
			return fmt.Errorf("threshold spec: duplicate endpoint %q", ep.Endpoint)
		}
		seenEndpoint[ep.Endpoint] = true
		if len(ep.Limits) == 0 {
			return fmt.Errorf("threshold spec: endpoint %q has no limits", ep.Endpoint)
		}
		seenMetric := make(map[string]bool)
		for _, limit := range ep.Limits {
			if limit.Metric == "" {
				return fmt.Errorf("threshold spec: endpoint %q has a limit with no metric name", ep.Endpoint)
			}
			if seenMetric[limit.Metric] {
				return fmt.Errorf("threshold spec: duplicate metric %q for endpoint %q", limit.Metric, ep.Endpoint)
			}
			seenMetric[limit.Metric] = true
			if limit.Max < 0 {
				return fmt.Errorf("threshold spec: %s/%s limit must not be negative, got %.2f",
					ep.Endpoint, limit.Metric, limit.Max)
			}
		}
	}
	return nil
}

// Endpoints lists the spec's endpoint names in declaration order.
func (s Spec) Endpoints() []string {
	names := make([]string, 0, len(s))
	for _, ep := range s {
		names = append(names, ep.Endpoint)
	}
	return names
}

// LimitsFor returns the limits configured for an endpoint, or nil when
// the endpoint is not in the spec.
func (s Spec) LimitsFor(endpoint string) []Limit {
	for _, ep := range s {
		if ep.Endpoint == endpoint {
			return ep.Limits
		}
	}
	return nil
}
