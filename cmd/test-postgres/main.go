package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/loadcart/http-load-runner/pkg/models"
	"github.com/loadcart/http-load-runner/pkg/storage"
)

func main() {
	dsn := "host=localhost port=5432 user=loaduser password=devpassword dbname=loadrunner sslmode=disable"
	if envDSN := os.Getenv("DATABASE_URL"); envDSN != "" {
		dsn = envDSN
	}

	fmt.Println("[INFO] Connecting to PostgreSQL...")
	store, err := storage.NewPostgresStore(dsn)
	if err != nil {
		fmt.Printf("[ERROR] Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		fmt.Printf("[ERROR] Ping failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("[SUCCESS] Connected to PostgreSQL")

	// Test 1: Save a failed run with violations
	fmt.Println("\n[TEST 1] Saving run...")
	record := &models.RunRecord{
		Scenario:        "probe-checkout",
		Profile:         "baseline",
		ShapeName:       "ramp",
		BaseURL:         "http://staging.example.com",
		StartedAt:       time.Now().Add(-8 * time.Minute),
		FinishedAt:      time.Now(),
		DurationSeconds: 480,
		PeakUsers:       50,
		TotalRequests:   12000,
		TotalFailures:   240,
		ErrorRatePct:    2.0,
		WorstP95Ms:      2500,
		ViolationCount:  2,
		Passed:          false,
		Violations: []models.StoredViolation{
			{Endpoint: "login", Metric: "p95_response_time_ms", Observed: 2500, LimitValue: 2000},
			{Endpoint: "login", Metric: "error_rate_pct", Observed: 6.5, LimitValue: 5},
		},
	}
	if err := store.SaveRun(ctx, record); err != nil {
		fmt.Printf("[ERROR] Save failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[SUCCESS] Saved run: %s\n", record.ID)

	// Test 2: Retrieve the run
	fmt.Println("\n[TEST 2] Retrieving run...")
	retrieved, err := store.GetRun(ctx, record.ID)
	if err != nil {
		fmt.Printf("[ERROR] Get failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[SUCCESS] Retrieved: %s (scenario: %s, worst p95: %.0fms, passed: %v)\n",
		retrieved.ID, retrieved.Scenario, retrieved.WorstP95Ms, retrieved.Passed)

	// Test 3: List runs for the scenario
	fmt.Println("\n[TEST 3] Listing runs...")
	runs, err := store.ListRuns(ctx, "probe-checkout", 10)
	if err != nil {
		fmt.Printf("[ERROR] List failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[SUCCESS] Found %d run(s) for probe-checkout\n", len(runs))
	for i, r := range runs {
		fmt.Printf("  %d. %s - p95 %.0fms, %d violation(s)\n", i+1, r.StartedAt.Format("2006-01-02 15:04:05"), r.WorstP95Ms, r.ViolationCount)
	}

	// Test 4: Violations come back in check order
	fmt.Println("\n[TEST 4] Retrieving violations...")
	violations, err := store.GetRunViolations(ctx, record.ID)
	if err != nil {
		fmt.Printf("[ERROR] Get violations failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[SUCCESS] Found %d violation(s)\n", len(violations))
	for i, v := range violations {
		fmt.Printf("  %d. %s: %s %.2f exceeds limit %.2f\n", i+1, v.Endpoint, v.Metric, v.Observed, v.LimitValue)
	}
	if len(violations) == 2 && violations[0].Metric != "p95_response_time_ms" {
		fmt.Println("[ERROR] Violations came back out of order")
		os.Exit(1)
	}

	fmt.Println("\n[INFO] All storage tests passed!")
}
