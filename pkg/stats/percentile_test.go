package stats

import (
	"math"
	"testing"
)

func TestCalculatePercentiles(t *testing.T) {
	// Latency samples: [1, 2, 3, 4, 5, 6, 7, 8, 9, 10] ms
	values := make([]float64, 10)
	for i := 0; i < 10; i++ {
		values[i] = float64(i + 1)
	}

	percentiles, err := CalculatePercentiles(values)
	if err != nil {
		t.Fatalf("CalculatePercentiles failed: %v", err)
	}

	if percentiles.Average != 5.5 {
		t.Errorf("Expected average 5.5, got %.2f", percentiles.Average)
	}

	if percentiles.Min != 1.0 {
		t.Errorf("Expected min 1.0, got %.2f", percentiles.Min)
	}

	if percentiles.Max != 10.0 {
		t.Errorf("Expected max 10.0, got %.2f", percentiles.Max)
	}

	// P50 should be around 5.5
	if math.Abs(percentiles.P50-5.5) > 0.5 {
		t.Errorf("Expected P50 ~5.5, got %.2f", percentiles.P50)
	}

	// P95 should be around 9.5
	if math.Abs(percentiles.P95-9.55) > 0.1 {
		t.Errorf("Expected P95 ~9.55, got %.2f", percentiles.P95)
	}
}

func TestCalculatePercentilesEmptyInput(t *testing.T) {
	if _, err := CalculatePercentiles(nil); err == nil {
		t.Error("Expected error for empty samples, got nil")
	}
}

func TestCalculatePercentilesSingleSample(t *testing.T) {
	percentiles, err := CalculatePercentiles([]float64{42})
	if err != nil {
		t.Fatalf("CalculatePercentiles failed: %v", err)
	}

	if percentiles.P50 != 42 || percentiles.P95 != 42 || percentiles.P99 != 42 {
		t.Errorf("Expected every percentile to be 42 for a single sample, got %+v", percentiles)
	}
}

func TestCalculatePercentilesDoesNotModifyInput(t *testing.T) {
	values := []float64{5, 1, 3, 2, 4}

	if _, err := CalculatePercentiles(values); err != nil {
		t.Fatalf("CalculatePercentiles failed: %v", err)
	}

	if values[0] != 5 || values[4] != 4 {
		t.Errorf("Expected input order preserved, got %v", values)
	}
}

func TestClassifyLatencyPattern(t *testing.T) {
	// Steady latency with very little variation
	steady := make([]float64, 100)
	for i := 0; i < 100; i++ {
		steady[i] = 100.0 + float64(i%5)
	}

	pattern := ClassifyLatencyPattern(steady)
	if pattern.Type != "steady" {
		t.Errorf("Expected 'steady' pattern, got '%s'", pattern.Type)
	}

	// Occasional large spikes
	spiky := make([]float64, 100)
	for i := 0; i < 100; i++ {
		if i%10 == 0 {
			spiky[i] = 1500.0
		} else {
			spiky[i] = 100.0
		}
	}

	pattern = ClassifyLatencyPattern(spiky)
	if pattern.Type != "spiky" && pattern.Type != "highly-variable" {
		t.Errorf("Expected spiky latency to classify as spiky or highly-variable, got '%s'", pattern.Type)
	}

	// Too few samples to classify
	pattern = ClassifyLatencyPattern([]float64{1, 2, 3})
	if pattern.Type != "unknown" {
		t.Errorf("Expected 'unknown' for under 10 samples, got '%s'", pattern.Type)
	}
}

func TestCalculateCoefficientOfVariation(t *testing.T) {
	// Identical values have zero variation
	if cv := CalculateCoefficientOfVariation([]float64{50, 50, 50, 50}); cv != 0 {
		t.Errorf("Expected CV 0 for identical values, got %.4f", cv)
	}

	// Fewer than two samples cannot vary
	if cv := CalculateCoefficientOfVariation([]float64{50}); cv != 0 {
		t.Errorf("Expected CV 0 for a single sample, got %.4f", cv)
	}

	// [10, 20]: mean 15, stddev 5, CV = 1/3
	cv := CalculateCoefficientOfVariation([]float64{10, 20})
	if math.Abs(cv-1.0/3.0) > 0.0001 {
		t.Errorf("Expected CV 0.3333, got %.4f", cv)
	}
}
