package report

import (
	"time"

	"github.com/loadcart/http-load-runner/pkg/models"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

// ReportFormat represents the output format
type ReportFormat string

const (
	FormatText ReportFormat = "text"
	FormatCSV  ReportFormat = "csv"
	FormatHTML ReportFormat = "html"
)

// Report contains all data for rendering a run report.
type Report struct {
	RunID       string
	Scenario    string
	Profile     string
	ShapeName   string
	BaseURL     string
	GeneratedAt time.Time
	StartedAt   time.Time
	Duration    time.Duration
	PeakUsers   int

	TotalRequests int
	TotalFailures int
	ErrorRatePct  float64
	TotalRPS      float64

	Endpoints  []EndpointRow
	Violations []threshold.Violation
	Passed     bool

	PodSummaries []models.PodSummary
}

// EndpointRow is the per-endpoint line of the report table.
type EndpointRow struct {
	Endpoint     string
	Requests     int
	Failures     int
	ErrorRatePct float64
	AvgMs        float64
	P50Ms        float64
	P90Ms        float64
	P95Ms        float64
	P99Ms        float64
	MaxMs        float64
	RPS          float64
	Pattern      string
}

// Build derives a report from a completed run. Endpoint rows follow the
// run's first-seen endpoint order so repeated renders are identical.
func Build(result *models.RunResult) *Report {
	rep := &Report{
		RunID:         result.RunID,
		Scenario:      result.Scenario,
		Profile:       result.Profile,
		ShapeName:     result.ShapeName,
		BaseURL:       result.BaseURL,
		GeneratedAt:   time.Now(),
		StartedAt:     result.StartedAt,
		Duration:      result.Duration,
		PeakUsers:     result.PeakUsers,
		TotalRequests: result.TotalRequests,
		TotalFailures: result.TotalFailures,
		ErrorRatePct:  result.ErrorRatePct(),
		Violations:    result.Violations,
		Passed:        result.Passed(),
		PodSummaries:  result.PodSummaries,
	}
	if result.Duration > 0 {
		rep.TotalRPS = float64(result.TotalRequests) / result.Duration.Seconds()
	}

	for _, name := range result.EndpointOrder {
		metrics := result.Observed[name]
		if metrics == nil {
			continue
		}
		row := EndpointRow{
			Endpoint:     name,
			Requests:     int(metrics[threshold.MetricRequests]),
			Failures:     int(metrics[threshold.MetricFailures]),
			ErrorRatePct: metrics[threshold.MetricErrorRatePct],
			AvgMs:        metrics[threshold.MetricAvgResponseMs],
			P50Ms:        metrics[threshold.MetricP50ResponseMs],
			P90Ms:        metrics[threshold.MetricP90ResponseMs],
			P95Ms:        metrics[threshold.MetricP95ResponseMs],
			P99Ms:        metrics[threshold.MetricP99ResponseMs],
			MaxMs:        metrics[threshold.MetricMaxResponseMs],
			RPS:          metrics[threshold.MetricRPS],
		}
		if pattern, exists := result.Patterns[name]; exists {
			row.Pattern = pattern.Type
		}
		rep.Endpoints = append(rep.Endpoints, row)
	}
	return rep
}
