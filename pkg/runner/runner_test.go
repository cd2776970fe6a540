package runner

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/loadcart/http-load-runner/pkg/scenario"
	"github.com/loadcart/http-load-runner/pkg/shape"
)

func testScenario(baseURL string) *scenario.Scenario {
	return &scenario.Scenario{
		Name:    "ping-test",
		BaseURL: baseURL,
		Profile: scenario.ProfileSmoke,
		Shape: scenario.ShapeConfig{
			Type:      "ramp",
			PeakUsers: 4,
			RampUp:    scenario.Duration(200 * time.Millisecond),
			Hold:      scenario.Duration(300 * time.Millisecond),
			Decay:     scenario.Duration(100 * time.Millisecond),
			SpawnRate: 100,
		},
		Endpoints: []scenario.Endpoint{
			{Name: "ping", Method: "GET", Path: "/ping", Weight: 1},
		},
	}
}

func fastOptions() Options {
	return Options{
		TickInterval: 25 * time.Millisecond,
		Pacing:       20 * time.Millisecond,
		Timeout:      2 * time.Second,
		Headless:     true,
	}
}

func TestRunCompletes(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	runner, err := New(testScenario(server.URL), fastOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.RunID == "" {
		t.Error("Expected a run ID")
	}
	if result.Scenario != "ping-test" {
		t.Errorf("Expected scenario ping-test, got %s", result.Scenario)
	}
	if result.ShapeName != "ramp" {
		t.Errorf("Expected shape ramp, got %s", result.ShapeName)
	}
	if result.PeakUsers != 4 {
		t.Errorf("Expected peak 4 users, got %d", result.PeakUsers)
	}
	if result.TotalRequests == 0 {
		t.Fatal("Expected requests to be issued")
	}
	if got := atomic.LoadInt64(&hits); got < int64(result.TotalRequests) {
		t.Errorf("Recorder counted %d requests but server saw %d", result.TotalRequests, got)
	}
	if result.Duration < 600*time.Millisecond {
		t.Errorf("Expected run to cover the shape, took %s", result.Duration)
	}

	if len(result.EndpointOrder) != 1 || result.EndpointOrder[0] != "ping" {
		t.Errorf("Expected endpoint order [ping], got %v", result.EndpointOrder)
	}
	if !result.Passed() {
		t.Errorf("Expected fast local run to pass, got violations %v", result.Violations)
	}
	if runner.ActiveWorkers() != 0 {
		t.Errorf("Expected all workers stopped, got %d", runner.ActiveWorkers())
	}
}

func TestRunRecordsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sc := testScenario(server.URL)
	sc.Endpoints[0].Name = "boom"

	runner, err := New(sc, fastOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.TotalFailures == 0 {
		t.Fatal("Expected failures for 500 responses")
	}
	if result.TotalFailures != result.TotalRequests {
		t.Errorf("Expected every request to fail, got %d/%d", result.TotalFailures, result.TotalRequests)
	}
	if result.Passed() {
		t.Error("Expected default error rate threshold to fail the run")
	}

	found := false
	for _, v := range result.Violations {
		if v.Endpoint == "boom" && v.Metric == "error_rate_pct" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected error rate violation for boom, got %v", result.Violations)
	}
}

func TestRunCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sc := testScenario(server.URL)
	sc.Shape.Hold = scenario.Duration(10 * time.Second)

	runner, err := New(sc, fastOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := runner.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Expected prompt shutdown on cancel, took %s", elapsed)
	}
	if result == nil {
		t.Fatal("Expected partial result from aborted run")
	}
	if runner.ActiveWorkers() != 0 {
		t.Errorf("Expected all workers stopped, got %d", runner.ActiveWorkers())
	}
}

func TestNewRejectsEmptyScenario(t *testing.T) {
	sc := testScenario("http://localhost")
	sc.Endpoints = nil

	if _, err := New(sc, Options{}); err == nil {
		t.Error("Expected error for scenario without endpoints")
	}
}

func TestNewRejectsBadShape(t *testing.T) {
	sc := testScenario("http://localhost")
	sc.Shape.Type = "sawtooth"

	if _, err := New(sc, Options{}); err == nil {
		t.Error("Expected error for unknown shape type")
	}
}

func TestPickEndpointWeights(t *testing.T) {
	endpoints := []scenario.Endpoint{
		{Name: "browse", Weight: 3},
		{Name: "checkout", Weight: 1},
	}
	weightSum := totalWeight(endpoints)
	if weightSum != 4 {
		t.Fatalf("Expected total weight 4, got %d", weightSum)
	}

	rng := rand.New(rand.NewSource(1))
	counts := map[string]int{}
	for i := 0; i < 4000; i++ {
		counts[pickEndpoint(endpoints, weightSum, rng).Name]++
	}

	browseShare := float64(counts["browse"]) / 4000
	if browseShare < 0.70 || browseShare > 0.80 {
		t.Errorf("Expected browse around 75%% of picks, got %.1f%%", browseShare*100)
	}
	if counts["checkout"] == 0 {
		t.Error("Expected checkout to be picked")
	}
}

func TestAdjustRespectsSpawnRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	runner, err := New(testScenario(server.URL), Options{
		TickInterval: time.Second,
		Pacing:       50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10 users/s over a 1s tick allows 10 spawns toward a target of 100
	runner.adjust(ctx, shape.Step{Users: 100, SpawnRate: 10})
	if got := runner.ActiveWorkers(); got != 10 {
		t.Errorf("Expected 10 workers after first tick, got %d", got)
	}

	runner.adjust(ctx, shape.Step{Users: 100, SpawnRate: 10})
	if got := runner.ActiveWorkers(); got != 20 {
		t.Errorf("Expected 20 workers after second tick, got %d", got)
	}

	// Shrinking is immediate
	runner.adjust(ctx, shape.Step{Users: 3, SpawnRate: 10})
	if got := runner.ActiveWorkers(); got != 3 {
		t.Errorf("Expected 3 workers after shrink, got %d", got)
	}

	runner.stopAll()
	runner.wg.Wait()
	if got := runner.ActiveWorkers(); got != 0 {
		t.Errorf("Expected 0 workers after stopAll, got %d", got)
	}
}

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest("ping", 0.1, false)
	m.ObserveRequest("ping", 0.2, false)
	m.ObserveRequest("ping", 0.3, true)
	m.SetUsers(3, 5)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("ping", "success")); got != 2 {
		t.Errorf("Expected 2 successes, got %f", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("ping", "failure")); got != 1 {
		t.Errorf("Expected 1 failure, got %f", got)
	}
	if got := testutil.ToFloat64(m.activeUsers); got != 3 {
		t.Errorf("Expected 3 active users, got %f", got)
	}
	if got := testutil.ToFloat64(m.targetUsers); got != 5 {
		t.Errorf("Expected 5 target users, got %f", got)
	}
	if got := testutil.CollectAndCount(m.duration); got != 1 {
		t.Errorf("Expected 1 histogram series, got %d", got)
	}
}
