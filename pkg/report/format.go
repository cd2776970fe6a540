package report

import (
	"fmt"
	"time"
)

// formatMs renders a millisecond value compactly: sub-10ms values keep
// one decimal, everything else rounds to whole milliseconds.
func formatMs(ms float64) string {
	if ms < 10 {
		return fmt.Sprintf("%.1fms", ms)
	}
	return fmt.Sprintf("%.0fms", ms)
}

// formatDuration trims a duration for display (1m30s, not 1m30.004672s).
func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

// formatMillicores renders CPU the kubectl way.
func formatMillicores(milli int64) string {
	return fmt.Sprintf("%dm", milli)
}

// formatMiB renders bytes as whole mebibytes.
func formatMiB(bytes int64) string {
	return fmt.Sprintf("%dMi", bytes/(1024*1024))
}
