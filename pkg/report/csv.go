package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// GenerateCSV creates a CSV report
func GenerateCSV(report *Report, writer io.Writer) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	// Write header
	header := []string{
		"Endpoint",
		"Requests",
		"Failures",
		"Error Rate (%)",
		"Avg (ms)",
		"P50 (ms)",
		"P90 (ms)",
		"P95 (ms)",
		"P99 (ms)",
		"Max (ms)",
		"RPS",
		"Pattern",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write endpoint rows
	for _, row := range report.Endpoints {
		record := []string{
			row.Endpoint,
			fmt.Sprintf("%d", row.Requests),
			fmt.Sprintf("%d", row.Failures),
			fmt.Sprintf("%.2f", row.ErrorRatePct),
			fmt.Sprintf("%.1f", row.AvgMs),
			fmt.Sprintf("%.1f", row.P50Ms),
			fmt.Sprintf("%.1f", row.P90Ms),
			fmt.Sprintf("%.1f", row.P95Ms),
			fmt.Sprintf("%.1f", row.P99Ms),
			fmt.Sprintf("%.1f", row.MaxMs),
			fmt.Sprintf("%.2f", row.RPS),
			row.Pattern,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	// Write summary rows
	w.Write([]string{}) // Empty row
	w.Write([]string{"SUMMARY"})
	w.Write([]string{"Scenario", report.Scenario})
	w.Write([]string{"Run ID", report.RunID})
	w.Write([]string{"Shape", report.ShapeName})
	w.Write([]string{"Peak Users", fmt.Sprintf("%d", report.PeakUsers)})
	w.Write([]string{"Duration", formatDuration(report.Duration)})
	w.Write([]string{"Total Requests", fmt.Sprintf("%d", report.TotalRequests)})
	w.Write([]string{"Total Failures", fmt.Sprintf("%d", report.TotalFailures)})
	w.Write([]string{"Error Rate", fmt.Sprintf("%.2f%%", report.ErrorRatePct)})

	// Violation breakdown
	w.Write([]string{}) // Empty row
	w.Write([]string{"VIOLATIONS"})
	if len(report.Violations) == 0 {
		w.Write([]string{"none"})
	} else {
		w.Write([]string{"Endpoint", "Metric", "Observed", "Limit"})
		for _, v := range report.Violations {
			w.Write([]string{
				v.Endpoint,
				v.Metric,
				fmt.Sprintf("%.2f", v.Observed),
				fmt.Sprintf("%.2f", v.Limit),
			})
		}
	}

	return nil
}
