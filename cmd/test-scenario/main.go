package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/loadcart/http-load-runner/pkg/scenario"
	"github.com/loadcart/http-load-runner/pkg/shape"
)

func main() {
	path := "scenarios/example.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	fmt.Printf("[INFO] Loading scenario: %s\n", path)
	sc, err := scenario.Load(path)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[SUCCESS] Scenario %s is valid\n", sc.Name)

	profCfg := scenario.GetProfileConfig(sc.Profile)
	fmt.Printf("\nProfile: %s (%s risk)\n", sc.Profile, profCfg.RiskLevel)
	fmt.Printf("  %s\n", profCfg.Description)
	fmt.Printf("  Caps: %d users, %s\n", profCfg.MaxPeakUsers, profCfg.MaxDuration)

	shp, err := sc.BuildShape()
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("Shape: %s, total %s\n", shp.Name(), shp.TotalDuration())
	fmt.Println(strings.Repeat("=", 60))
	for i, p := range shp.Phases() {
		fmt.Printf("  %d. %-10s %s - %s\n", i+1, p.Name, p.Start, p.End)
	}

	// Walk the stepper across the whole timeline so a reviewer can eyeball
	// the concurrency curve before pointing it at a real target.
	fmt.Println("\nTick table:")
	fmt.Printf("  %-10s %-12s %-8s %s\n", "elapsed", "phase", "users", "spawn/s")
	total := shp.TotalDuration()
	samples := 12
	for i := 0; i <= samples; i++ {
		elapsed := total * time.Duration(i) / time.Duration(samples)
		step, ok := shp.Tick(elapsed)
		if !ok {
			fmt.Printf("  %-10s %-12s %s\n", elapsed, "done", "run over")
			continue
		}
		fmt.Printf("  %-10s %-12s %-8d %.1f\n", elapsed, shape.PhaseAt(shp, elapsed), step.Users, step.SpawnRate)
	}

	fmt.Println("\nEndpoints:")
	for i, ep := range sc.Endpoints {
		fmt.Printf("  %d. %-12s %s %s (weight %d)\n", i+1, ep.Name, ep.Method, ep.Path, ep.Weight)
	}

	spec := sc.BuildSpec()
	fmt.Println("\nThresholds:")
	for _, el := range spec {
		for _, lim := range el.Limits {
			fmt.Printf("  %s: %s <= %.2f\n", el.Endpoint, lim.Metric, lim.Max)
		}
	}

	fmt.Println("\n[INFO] Test complete!")
}
