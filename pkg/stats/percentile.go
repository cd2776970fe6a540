package stats

import (
	"fmt"
	"math"
	"sort"
)

// Percentiles summarizes a latency distribution in milliseconds.
type Percentiles struct {
	Average float64
	P50     float64
	P90     float64
	P95     float64
	P99     float64
	Max     float64
	Min     float64
}

// LatencyPattern classifies how variable an endpoint's latency was
// during a run.
type LatencyPattern struct {
	Type       string
	Variation  float64
	Confidence float64
}

// CalculatePercentiles computes P50, P90, P95, P99, and the extremes from
// latency samples. The input slice is not modified.
func CalculatePercentiles(values []float64) (*Percentiles, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return &Percentiles{
		Average: calculateAverage(sorted),
		P50:     calculatePercentile(sorted, 50),
		P90:     calculatePercentile(sorted, 90),
		P95:     calculatePercentile(sorted, 95),
		P99:     calculatePercentile(sorted, 99),
		Max:     sorted[len(sorted)-1],
		Min:     sorted[0],
	}, nil
}

// calculatePercentile computes the Nth percentile using linear interpolation
func calculatePercentile(sortedValues []float64, percentile float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}

	if len(sortedValues) == 1 {
		return sortedValues[0]
	}

	// Using the "nearest rank" method with linear interpolation
	n := float64(len(sortedValues))
	rank := (percentile / 100.0) * (n - 1)

	lowerIndex := int(math.Floor(rank))
	upperIndex := int(math.Ceil(rank))

	if lowerIndex == upperIndex {
		return sortedValues[lowerIndex]
	}

	lowerValue := sortedValues[lowerIndex]
	upperValue := sortedValues[upperIndex]
	fraction := rank - float64(lowerIndex)

	return lowerValue + (upperValue-lowerValue)*fraction
}

// calculateAverage computes the mean of values
func calculateAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// CalculateCoefficientOfVariation measures the relative variability
// High CV (>0.5) = spiky latency
// Low CV (<0.2) = steady latency
func CalculateCoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := calculateAverage(values)
	if mean == 0 {
		return 0
	}

	sumSquaredDiff := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}

	variance := sumSquaredDiff / float64(len(values))
	stdDev := math.Sqrt(variance)

	return stdDev / mean
}

// ClassifyLatencyPattern determines if an endpoint's latency was steady,
// moderate, spiky, or highly variable across a run.
func ClassifyLatencyPattern(values []float64) LatencyPattern {
	if len(values) < 10 {
		return LatencyPattern{
			Type:       "unknown",
			Variation:  0,
			Confidence: 0,
		}
	}

	cv := CalculateCoefficientOfVariation(values)

	var patternType string
	var confidence float64

	if cv < 0.15 {
		patternType = "steady"
		confidence = 0.95
	} else if cv < 0.35 {
		patternType = "moderate"
		confidence = 0.85
	} else if cv < 0.70 {
		patternType = "spiky"
		confidence = 0.80
	} else {
		patternType = "highly-variable"
		confidence = 0.75
	}

	return LatencyPattern{
		Type:       patternType,
		Variation:  cv,
		Confidence: confidence,
	}
}
