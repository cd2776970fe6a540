package report

import (
	"fmt"
	"io"
	"strings"
)

// GenerateText renders the full run report as a console-friendly table.
func GenerateText(report *Report, writer io.Writer) error {
	var b strings.Builder

	b.WriteString("=== Load Test Report ===\n\n")
	fmt.Fprintf(&b, "Scenario: %s [%s]\n", report.Scenario, strings.ToUpper(report.Profile))
	fmt.Fprintf(&b, "Run ID: %s\n", report.RunID)
	fmt.Fprintf(&b, "Target: %s\n", report.BaseURL)
	fmt.Fprintf(&b, "Shape: %s (peak %d users)\n", report.ShapeName, report.PeakUsers)
	fmt.Fprintf(&b, "Started: %s\n", report.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Duration: %s\n\n", formatDuration(report.Duration))

	fmt.Fprintf(&b, "Requests: %d total, %d failed (%.2f%%)\n",
		report.TotalRequests, report.TotalFailures, report.ErrorRatePct)
	fmt.Fprintf(&b, "Throughput: %.1f req/s\n\n", report.TotalRPS)

	if len(report.Endpoints) > 0 {
		fmt.Fprintf(&b, "%-24s %8s %6s %9s %9s %9s %9s %9s %8s\n",
			"Endpoint", "Reqs", "Fail", "Avg", "P50", "P95", "P99", "Max", "RPS")
		b.WriteString(strings.Repeat("-", 98) + "\n")
		for _, row := range report.Endpoints {
			fmt.Fprintf(&b, "%-24s %8d %6d %9s %9s %9s %9s %9s %8.1f\n",
				row.Endpoint,
				row.Requests,
				row.Failures,
				formatMs(row.AvgMs),
				formatMs(row.P50Ms),
				formatMs(row.P95Ms),
				formatMs(row.P99Ms),
				formatMs(row.MaxMs),
				row.RPS)
			if row.Pattern != "" && row.Pattern != "unknown" {
				fmt.Fprintf(&b, "%-24s latency pattern: %s\n", "", row.Pattern)
			}
		}
		b.WriteString("\n")
	}

	if len(report.PodSummaries) > 0 {
		b.WriteString("Pod usage during run:\n")
		for _, pod := range report.PodSummaries {
			fmt.Fprintf(&b, "  %s: cpu max %s avg %s, memory max %s, restarts %d\n",
				pod.Pod,
				formatMillicores(pod.MaxCPUMilli),
				formatMillicores(int64(pod.AvgCPUMilli)),
				formatMiB(pod.MaxMemoryBytes),
				pod.Restarts)
		}
		b.WriteString("\n")
	}

	if len(report.Violations) > 0 {
		b.WriteString("Threshold violations:\n")
		for i, v := range report.Violations {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, v.String())
		}
		fmt.Fprintf(&b, "\nResult: FAILED (%d violation(s))\n", len(report.Violations))
	} else {
		b.WriteString("Result: PASSED (all thresholds satisfied)\n")
	}

	_, err := io.WriteString(writer, b.String())
	return err
}
