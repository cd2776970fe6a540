package converter

import (
	"fmt"

	"github.com/loadcart/http-load-runner/pkg/models"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

// ResultToRecord converts an in-memory run result to its stored form
func ResultToRecord(result *models.RunResult) *models.RunRecord {
	record := &models.RunRecord{
		ID:              result.RunID,
		Scenario:        result.Scenario,
		Profile:         result.Profile,
		ShapeName:       result.ShapeName,
		BaseURL:         result.BaseURL,
		StartedAt:       result.StartedAt,
		FinishedAt:      result.FinishedAt,
		DurationSeconds: result.Duration.Seconds(),
		PeakUsers:       result.PeakUsers,
		TotalRequests:   result.TotalRequests,
		TotalFailures:   result.TotalFailures,
		ErrorRatePct:    result.ErrorRatePct(),
		WorstP95Ms:      worstP95(result),
		ViolationCount:  len(result.Violations),
		Passed:          result.Passed(),
	}

	for _, v := range result.Violations {
		record.Violations = append(record.Violations, models.StoredViolation{
			RunID:      result.RunID,
			Endpoint:   v.Endpoint,
			Metric:     v.Metric,
			Observed:   v.Observed,
			LimitValue: v.Limit,
		})
	}

	return record
}

// worstP95 finds the highest endpoint p95 in the run, the headline number
// for trend analysis across runs
func worstP95(result *models.RunResult) float64 {
	worst := 0.0
	for _, endpoint := range result.EndpointOrder {
		if p95 := result.Observed[endpoint][threshold.MetricP95ResponseMs]; p95 > worst {
			worst = p95
		}
	}
	return worst
}

// RerunCommand builds the command line that reproduces a stored run
func RerunCommand(record *models.RunRecord, scenarioPath string) string {
	cmd := fmt.Sprintf("load-run --scenario %s --profile %s", scenarioPath, record.Profile)
	if record.BaseURL != "" {
		cmd += fmt.Sprintf(" --base-url %s", record.BaseURL)
	}
	return cmd
}

// StoredToViolation converts a persisted violation back to the checker's
// form so audit output prints the same way live checks do
func StoredToViolation(stored *models.StoredViolation) threshold.Violation {
	return threshold.Violation{
		Endpoint: stored.Endpoint,
		Metric:   stored.Metric,
		Observed: stored.Observed,
		Limit:    stored.LimitValue,
	}
}
