package converter

import (
	"strings"
	"testing"
	"time"

	"github.com/loadcart/http-load-runner/pkg/models"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

func sampleResult() *models.RunResult {
	started := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)

	return &models.RunResult{
		RunID:         "run-123",
		Scenario:      "checkout",
		Profile:       "baseline",
		ShapeName:     "ramp",
		BaseURL:       "https://shop.example.com",
		StartedAt:     started,
		FinishedAt:    started.Add(8 * time.Minute),
		Duration:      8 * time.Minute,
		PeakUsers:     50,
		TotalRequests: 1000,
		TotalFailures: 20,
		EndpointOrder: []string{"login", "browse"},
		Observed: threshold.Observed{
			"login":  {threshold.MetricP95ResponseMs: 2500},
			"browse": {threshold.MetricP95ResponseMs: 800},
		},
		Violations: []threshold.Violation{
			{Endpoint: "login", Metric: threshold.MetricP95ResponseMs, Observed: 2500, Limit: 2000},
		},
	}
}

func TestResultToRecord(t *testing.T) {
	record := ResultToRecord(sampleResult())

	if record.ID != "run-123" {
		t.Errorf("Expected ID run-123, got %s", record.ID)
	}
	if record.Scenario != "checkout" {
		t.Errorf("Expected scenario checkout, got %s", record.Scenario)
	}
	if record.DurationSeconds != 480 {
		t.Errorf("Expected 480 duration seconds, got %f", record.DurationSeconds)
	}
	if record.ErrorRatePct != 2.0 {
		t.Errorf("Expected error rate 2.0, got %f", record.ErrorRatePct)
	}
	if record.WorstP95Ms != 2500 {
		t.Errorf("Expected worst p95 2500, got %f", record.WorstP95Ms)
	}
	if record.ViolationCount != 1 {
		t.Errorf("Expected 1 violation, got %d", record.ViolationCount)
	}
	if record.Passed {
		t.Error("Expected run with violations to not pass")
	}

	if len(record.Violations) != 1 {
		t.Fatalf("Expected 1 stored violation, got %d", len(record.Violations))
	}
	stored := record.Violations[0]
	if stored.Endpoint != "login" || stored.Metric != threshold.MetricP95ResponseMs {
		t.Errorf("Expected login p95 violation, got %s %s", stored.Endpoint, stored.Metric)
	}
	if stored.Observed != 2500 || stored.LimitValue != 2000 {
		t.Errorf("Expected observed 2500 limit 2000, got %f %f", stored.Observed, stored.LimitValue)
	}
	if stored.RunID != "run-123" {
		t.Errorf("Expected violation run ID run-123, got %s", stored.RunID)
	}
}

func TestResultToRecordPassedRun(t *testing.T) {
	result := sampleResult()
	result.Violations = nil

	record := ResultToRecord(result)

	if !record.Passed {
		t.Error("Expected clean run to pass")
	}
	if record.ViolationCount != 0 {
		t.Errorf("Expected 0 violations, got %d", record.ViolationCount)
	}
	if len(record.Violations) != 0 {
		t.Errorf("Expected no stored violations, got %d", len(record.Violations))
	}
}

func TestWorstP95EmptyRun(t *testing.T) {
	result := sampleResult()
	result.EndpointOrder = nil
	result.Observed = threshold.Observed{}

	record := ResultToRecord(result)

	if record.WorstP95Ms != 0 {
		t.Errorf("Expected worst p95 0 for empty run, got %f", record.WorstP95Ms)
	}
}

func TestRerunCommand(t *testing.T) {
	record := ResultToRecord(sampleResult())

	cmd := RerunCommand(record, "scenarios/checkout.yaml")

	if !strings.Contains(cmd, "load-run --scenario scenarios/checkout.yaml") {
		t.Errorf("Expected run command, got %s", cmd)
	}
	if !strings.Contains(cmd, "--profile baseline") {
		t.Errorf("Expected profile flag, got %s", cmd)
	}
	if !strings.Contains(cmd, "--base-url https://shop.example.com") {
		t.Errorf("Expected base URL flag, got %s", cmd)
	}
}

func TestStoredToViolation(t *testing.T) {
	stored := &models.StoredViolation{
		Endpoint:   "login",
		Metric:     threshold.MetricP95ResponseMs,
		Observed:   2500,
		LimitValue: 2000,
	}

	v := StoredToViolation(stored)

	expected := "login: p95_response_time_ms 2500.00 exceeds limit 2000.00"
	if v.String() != expected {
		t.Errorf("Expected %q, got %q", expected, v.String())
	}
}
