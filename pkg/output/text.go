package output

import (
	"context"
	"fmt"
	"io"

	"github.com/loadcart/http-load-runner/pkg/advisor"
	"github.com/loadcart/http-load-runner/pkg/models"
	"github.com/loadcart/http-load-runner/pkg/report"
)

// TextHandler renders human-readable console output
type TextHandler struct {
	writer io.Writer
}

func (h *TextHandler) DisplayRun(ctx context.Context, result *models.RunResult, advice *advisor.Advice) error {
	if err := report.GenerateText(report.Build(result), h.writer); err != nil {
		return err
	}

	if advice != nil {
		fmt.Fprintf(h.writer, "\n%s\n", advice)
	}

	return nil
}

func (h *TextHandler) DisplayHistory(ctx context.Context, records []*models.RunRecord, trend *advisor.Trend) error {
	if len(records) == 0 {
		fmt.Fprintln(h.writer, "[INFO] No stored runs found")
		return nil
	}

	fmt.Fprintf(h.writer, "=== Run History ===\n\n")

	for i, record := range records {
		verdict := "PASS"
		if !record.Passed {
			verdict = "FAIL"
		}

		fmt.Fprintf(h.writer, "%d. %s (%s) [%s]\n", i+1, record.Scenario, record.Profile, verdict)
		fmt.Fprintf(h.writer, "   Run ID: %s\n", record.ID)
		fmt.Fprintf(h.writer, "   Started: %s\n", record.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(h.writer, "   Shape: %s  Peak: %d users  Duration: %.0fs\n",
			record.ShapeName, record.PeakUsers, record.DurationSeconds)
		fmt.Fprintf(h.writer, "   Requests: %d (%.1f%% errors)\n", record.TotalRequests, record.ErrorRatePct)
		fmt.Fprintf(h.writer, "   Worst p95: %.0fms  Violations: %d\n", record.WorstP95Ms, record.ViolationCount)
		fmt.Fprintln(h.writer)
	}

	if trend != nil {
		fmt.Fprintf(h.writer, "%s\n", trend)
	}

	return nil
}

func (h *TextHandler) DisplayViolations(ctx context.Context, record *models.RunRecord) error {
	fmt.Fprintf(h.writer, "=== Run %s ===\n\n", record.ID)
	fmt.Fprintf(h.writer, "Scenario: %s (%s)\n", record.Scenario, record.Profile)
	fmt.Fprintf(h.writer, "Started: %s\n", record.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(h.writer, "Requests: %d (%.1f%% errors)\n\n", record.TotalRequests, record.ErrorRatePct)

	if len(record.Violations) == 0 {
		fmt.Fprintln(h.writer, "[INFO] No violations recorded for this run")
		return nil
	}

	fmt.Fprintf(h.writer, "Violations (%d):\n", len(record.Violations))
	for i, stored := range record.Violations {
		fmt.Fprintf(h.writer, "  %d. %s: %s %.2f exceeds limit %.2f\n",
			i+1, stored.Endpoint, stored.Metric, stored.Observed, stored.LimitValue)
	}

	return nil
}

func (h *TextHandler) Format() string {
	return "text"
}
