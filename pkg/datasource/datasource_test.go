package datasource

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/common/model"

	"github.com/loadcart/http-load-runner/pkg/models"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

func TestEndpointQueries(t *testing.T) {
	queries := endpointQueries("login", 15*time.Minute)

	expected := map[string]string{
		threshold.MetricRequests:      `sum(increase(loadrun_requests_total{endpoint="login"}[15m]))`,
		threshold.MetricFailures:      `sum(increase(loadrun_requests_total{endpoint="login",status="failure"}[15m]))`,
		threshold.MetricRPS:           `sum(rate(loadrun_requests_total{endpoint="login"}[15m]))`,
		threshold.MetricP95ResponseMs: `histogram_quantile(0.95, sum(rate(loadrun_request_duration_seconds_bucket{endpoint="login"}[15m])) by (le)) * 1000`,
	}

	for metric, want := range expected {
		got, ok := queries[metric]
		if !ok {
			t.Errorf("Expected a query for %s, got none", metric)
			continue
		}
		if got != want {
			t.Errorf("Expected %s query %q, got %q", metric, want, got)
		}
	}

	for _, metric := range []string{
		threshold.MetricAvgResponseMs,
		threshold.MetricP50ResponseMs,
		threshold.MetricP90ResponseMs,
		threshold.MetricP99ResponseMs,
	} {
		if _, ok := queries[metric]; !ok {
			t.Errorf("Expected a query for %s, got none", metric)
		}
	}

	if _, ok := queries[threshold.MetricErrorRatePct]; ok {
		t.Error("Expected error rate to be derived, not queried")
	}
}

func TestEndpointQueriesWindowFormat(t *testing.T) {
	queries := endpointQueries("browse", 90*time.Second)

	if !strings.Contains(queries[threshold.MetricRequests], "[1m30s]") {
		t.Errorf("Expected 1m30s range selector, got %q", queries[threshold.MetricRequests])
	}
}

func TestSumVector(t *testing.T) {
	vector := model.Vector{
		&model.Sample{Value: model.SampleValue(1.5)},
		&model.Sample{Value: model.SampleValue(2.5)},
	}

	if sum := sumVector(vector); sum != 4.0 {
		t.Errorf("Expected sum 4.0, got %f", sum)
	}
}

func TestSumVectorSkipsNaN(t *testing.T) {
	vector := model.Vector{
		&model.Sample{Value: model.SampleValue(math.NaN())},
		&model.Sample{Value: model.SampleValue(3.0)},
	}

	if sum := sumVector(vector); sum != 3.0 {
		t.Errorf("Expected NaN samples skipped, got %f", sum)
	}
}

func TestFileSourceFetchStats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats-checkout.json")

	stats := models.StatsFile{
		Scenario:    "checkout",
		RunID:       "run-1",
		GeneratedAt: time.Now().UTC(),
		Observed: threshold.Observed{
			"login": {
				threshold.MetricRequests:      400,
				threshold.MetricP95ResponseMs: 2500,
			},
		},
	}

	data, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("Failed to marshal stats: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write stats file: %v", err)
	}

	source := NewFileSource(path)

	if !source.IsAvailable(context.Background()) {
		t.Error("Expected file source to be available")
	}
	if source.Name() != "StatsFile" {
		t.Errorf("Expected name StatsFile, got %s", source.Name())
	}

	observed, err := source.FetchStats(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("FetchStats failed: %v", err)
	}

	if observed["login"][threshold.MetricP95ResponseMs] != 2500 {
		t.Errorf("Expected login p95 2500, got %f", observed["login"][threshold.MetricP95ResponseMs])
	}

	// Replayed stats should evaluate like live ones
	spec := threshold.Spec{
		{Endpoint: "login", Limits: []threshold.Limit{{Metric: threshold.MetricP95ResponseMs, Max: 2000}}},
	}
	violations := threshold.Check(observed, spec)
	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation from replayed stats, got %d", len(violations))
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "absent.json"))

	if source.IsAvailable(context.Background()) {
		t.Error("Expected missing file to be unavailable")
	}

	if _, err := source.FetchStats(context.Background(), nil, 0); err == nil {
		t.Error("Expected error for missing stats file")
	}
}

func TestFileSourceMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	source := NewFileSource(path)
	if _, err := source.FetchStats(context.Background(), nil, 0); err == nil {
		t.Error("Expected error for malformed stats file")
	}
}

func TestFileSourceEmptyObserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"scenario":"s","run_id":"r"}`), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	observed, err := NewFileSource(path).FetchStats(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("FetchStats failed: %v", err)
	}
	if observed == nil {
		t.Fatal("Expected non-nil observed for empty stats")
	}
	if len(observed) != 0 {
		t.Errorf("Expected empty observed, got %d endpoints", len(observed))
	}
}

func TestQueryCache(t *testing.T) {
	cache := NewQueryCache(time.Minute)

	if _, ok := cache.Get("q"); ok {
		t.Error("Expected miss on empty cache")
	}

	cache.Set("q", 42.5)

	value, ok := cache.Get("q")
	if !ok {
		t.Fatal("Expected hit after Set")
	}
	if value != 42.5 {
		t.Errorf("Expected 42.5, got %f", value)
	}
}

func TestQueryCacheExpiry(t *testing.T) {
	cache := NewQueryCache(10 * time.Millisecond)

	cache.Set("q", 1.0)
	time.Sleep(25 * time.Millisecond)

	if _, ok := cache.Get("q"); ok {
		t.Error("Expected entry to expire")
	}
}

func TestQueryCacheClear(t *testing.T) {
	cache := NewQueryCache(time.Minute)
	cache.Set("a", 1)
	cache.Set("b", 2)

	cache.Clear()

	if _, ok := cache.Get("a"); ok {
		t.Error("Expected cache to be empty after Clear")
	}
}
