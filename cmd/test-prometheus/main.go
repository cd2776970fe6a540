package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/loadcart/http-load-runner/pkg/datasource"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

func main() {
	prometheusURL := "http://localhost:9090"
	if url := os.Getenv("PROMETHEUS_URL"); url != "" {
		prometheusURL = url
	}

	fmt.Println("[INFO] Connecting to Prometheus:", prometheusURL)

	source, err := datasource.NewPrometheusSource(prometheusURL)
	if err != nil {
		fmt.Printf("[ERROR] Failed to create Prometheus source: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if !source.IsAvailable(ctx) {
		fmt.Println("[ERROR] Prometheus is not available")
		os.Exit(1)
	}
	fmt.Println("[INFO] Prometheus is available")

	endpoints := []string{"login", "browse", "checkout"}
	if args := os.Args[1:]; len(args) > 0 {
		endpoints = args
	}
	window := 15 * time.Minute

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("Fetching stats for %d endpoint(s) over the last %s\n", len(endpoints), window)
	fmt.Println(strings.Repeat("=", 80) + "\n")

	observed, err := source.FetchStats(ctx, endpoints, window)
	if err != nil {
		fmt.Printf("[ERROR] FetchStats failed: %v\n", err)
		os.Exit(1)
	}

	for _, name := range endpoints {
		metrics := observed[name]

		fmt.Printf("Endpoint: %s\n", name)
		fmt.Println(strings.Repeat("-", 40))
		fmt.Printf("  Requests:   %.0f (%.0f failed, %.2f%% error rate)\n",
			metrics[threshold.MetricRequests],
			metrics[threshold.MetricFailures],
			metrics[threshold.MetricErrorRatePct])
		fmt.Printf("  Throughput: %.2f req/s\n", metrics[threshold.MetricRPS])
		fmt.Printf("  Latency:    avg %.0fms, p50 %.0fms, p95 %.0fms, p99 %.0fms\n",
			metrics[threshold.MetricAvgResponseMs],
			metrics[threshold.MetricP50ResponseMs],
			metrics[threshold.MetricP95ResponseMs],
			metrics[threshold.MetricP99ResponseMs])
		fmt.Println()
	}

	// Run the default thresholds over whatever came back
	spec := threshold.DefaultSpecFor(endpoints)
	violations := threshold.Check(observed, spec)
	if len(violations) == 0 {
		fmt.Println("[INFO] Default thresholds satisfied")
	} else {
		fmt.Printf("[WARN] %d violation(s) against default thresholds:\n", len(violations))
		for i, v := range violations {
			fmt.Printf("  %d. %s\n", i+1, v)
		}
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("[INFO] Test complete!")
}
