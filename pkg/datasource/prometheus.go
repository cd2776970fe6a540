package datasource

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/loadcart/http-load-runner/pkg/threshold"
)

// queryCacheTTL bounds how long instant-query results are reused within
// one invocation. Checks against a closed window are stable over that span.
const queryCacheTTL = 30 * time.Second

var errNoData = errors.New("no data for query")

type PrometheusSource struct {
	client v1.API
	url    string
	cache  *QueryCache
}

func NewPrometheusSource(url string) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{
		Address: url,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &PrometheusSource{
		client: v1.NewAPI(client),
		url:    url,
		cache:  NewQueryCache(queryCacheTTL),
	}, nil
}

// FetchStats collects the observed stats for each endpoint over the given
// window. Endpoints that produced no samples read as zero across the board
// so they never trip a threshold.
func (p *PrometheusSource) FetchStats(ctx context.Context, endpoints []string, window time.Duration) (threshold.Observed, error) {
	observed := make(threshold.Observed, len(endpoints))

	for _, endpoint := range endpoints {
		metrics := make(threshold.Metrics)

		for metric, query := range endpointQueries(endpoint, window) {
			value, err := p.fetchValue(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("%s query for %s failed: %w", metric, endpoint, err)
			}
			metrics[metric] = value
		}

		requests := metrics[threshold.MetricRequests]
		if requests > 0 {
			metrics[threshold.MetricErrorRatePct] = metrics[threshold.MetricFailures] / requests * 100
		} else {
			metrics[threshold.MetricErrorRatePct] = 0
		}

		observed[endpoint] = metrics
	}

	return observed, nil
}

// endpointQueries builds the instant queries for one endpoint. Durations come
// back from the histogram in seconds and are scaled to milliseconds.
func endpointQueries(endpoint string, window time.Duration) map[string]string {
	rangeSel := model.Duration(window).String()
	bucket := fmt.Sprintf(`rate(loadrun_request_duration_seconds_bucket{endpoint="%s"}[%s])`, endpoint, rangeSel)

	quantile := func(q string) string {
		return fmt.Sprintf(`histogram_quantile(%s, sum(%s) by (le)) * 1000`, q, bucket)
	}

	return map[string]string{
		threshold.MetricRequests: fmt.Sprintf(
			`sum(increase(loadrun_requests_total{endpoint="%s"}[%s]))`, endpoint, rangeSel),
		threshold.MetricFailures: fmt.Sprintf(
			`sum(increase(loadrun_requests_total{endpoint="%s",status="failure"}[%s]))`, endpoint, rangeSel),
		threshold.MetricRPS: fmt.Sprintf(
			`sum(rate(loadrun_requests_total{endpoint="%s"}[%s]))`, endpoint, rangeSel),
		threshold.MetricAvgResponseMs: fmt.Sprintf(
			`sum(rate(loadrun_request_duration_seconds_sum{endpoint="%s"}[%s])) / sum(rate(loadrun_request_duration_seconds_count{endpoint="%s"}[%s])) * 1000`,
			endpoint, rangeSel, endpoint, rangeSel),
		threshold.MetricP50ResponseMs: quantile("0.50"),
		threshold.MetricP90ResponseMs: quantile("0.90"),
		threshold.MetricP95ResponseMs: quantile("0.95"),
		threshold.MetricP99ResponseMs: quantile("0.99"),
	}
}

// fetchValue runs one instant query, treating empty results as zero.
func (p *PrometheusSource) fetchValue(ctx context.Context, query string) (float64, error) {
	if value, ok := p.cache.Get(query); ok {
		return value, nil
	}

	value, err := p.querySingle(ctx, query)
	if errors.Is(err, errNoData) {
		value, err = 0, nil
	}
	if err != nil {
		return 0, err
	}

	p.cache.Set(query, value)
	return value, nil
}

func (p *PrometheusSource) querySingle(ctx context.Context, query string) (float64, error) {
	result, warnings, err := p.client.Query(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("query failed: %w", err)
	}

	if len(warnings) > 0 {
		fmt.Printf("[WARN] Prometheus: %v\n", warnings)
	}

	vector, ok := result.(model.Vector)
	if !ok || len(vector) == 0 {
		return 0, errNoData
	}

	return sumVector(vector), nil
}

// sumVector adds up all samples in a vector. histogram_quantile yields NaN
// when the range holds no buckets, which counts as no data here.
func sumVector(vector model.Vector) float64 {
	sum := 0.0
	for _, sample := range vector {
		value := float64(sample.Value)
		if math.IsNaN(value) {
			continue
		}
		sum += value
	}
	return sum
}

func (p *PrometheusSource) IsAvailable(ctx context.Context) bool {
	_, _, err := p.client.Query(ctx, "up", time.Now())
	return err == nil
}

func (p *PrometheusSource) Name() string {
	return "Prometheus"
}
