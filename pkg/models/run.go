package models

import (
	"time"

	"github.com/loadcart/http-load-runner/pkg/stats"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

// RunResult is the in-memory outcome of a completed load run.
type RunResult struct {
	RunID         string
	Scenario      string
	Profile       string
	ShapeName     string
	BaseURL       string
	StartedAt     time.Time
	FinishedAt    time.Time
	Duration      time.Duration
	PeakUsers     int
	TotalRequests int
	TotalFailures int

	// Endpoint names in first-seen order, for stable report output.
	EndpointOrder []string
	Observed      threshold.Observed
	Patterns      map[string]stats.LatencyPattern
	Violations    []threshold.Violation

	// Populated only when the pod monitor ran.
	PodSummaries []PodSummary
}

// Passed reports whether the run satisfied every threshold.
func (r *RunResult) Passed() bool {
	return len(r.Violations) == 0
}

// ErrorRatePct is the overall failure percentage across all endpoints.
func (r *RunResult) ErrorRatePct() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return float64(r.TotalFailures) / float64(r.TotalRequests) * 100
}

// RunRecord is the stored form of a run in the history database.
type RunRecord struct {
	ID              string
	Scenario        string
	Profile         string
	ShapeName       string
	BaseURL         string
	StartedAt       time.Time
	FinishedAt      time.Time
	DurationSeconds float64
	PeakUsers       int
	TotalRequests   int
	TotalFailures   int
	ErrorRatePct    float64

	// Worst endpoint p95 for the run, used for trend analysis.
	WorstP95Ms float64

	ViolationCount int
	Passed         bool
	CreatedAt      time.Time

	// Loaded on demand by audit queries.
	Violations []StoredViolation
}

// StoredViolation is one persisted threshold violation.
type StoredViolation struct {
	ID         string
	RunID      string
	Endpoint   string
	Metric     string
	Observed   float64
	LimitValue float64
	CreatedAt  time.Time
}

// StatsFile is the raw-stats JSON artifact a run writes next to its
// reports. The check command can load it later and re-evaluate the run
// against a different threshold spec.
type StatsFile struct {
	Scenario    string             `json:"scenario"`
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Observed    threshold.Observed `json:"observed"`
}
