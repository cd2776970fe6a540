package advisor

import (
	"fmt"
	"sort"

	"github.com/loadcart/http-load-runner/pkg/models"
)

// minTrendRuns is the shortest history worth fitting a line through
const minTrendRuns = 3

// Trend describes how worst-endpoint p95 moves across stored runs
type Trend struct {
	Direction  string  // increasing, decreasing or stable
	RatePerDay float64 // percent change per day relative to the mean p95
	Confidence float64 // R² of the fit
	Samples    int
}

// AnalyzeTrend fits a least-squares line through worst p95 over run start
// times. A weak fit reads as stable regardless of slope.
func AnalyzeTrend(records []*models.RunRecord) (*Trend, error) {
	if len(records) < minTrendRuns {
		return &Trend{Direction: "stable", Samples: len(records)},
			fmt.Errorf("insufficient history for trend analysis (need %d+ runs, got %d)",
				minTrendRuns, len(records))
	}

	sorted := make([]*models.RunRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartedAt.Before(sorted[j].StartedAt)
	})

	start := sorted[0].StartedAt
	x := make([]float64, len(sorted)) // Hours since first run
	y := make([]float64, len(sorted)) // Worst p95 in ms

	for i, record := range sorted {
		x[i] = record.StartedAt.Sub(start).Hours()
		y[i] = record.WorstP95Ms
	}

	slope, _, r2 := linearRegression(x, y)
	meanY := mean(y)

	ratePerDay := 0.0
	if meanY > 0 {
		ratePerDay = slope * 24.0 / meanY * 100.0
	}

	direction := "stable"
	if r2 >= 0.5 {
		if slope > 0 {
			direction = "increasing"
		} else if slope < 0 {
			direction = "decreasing"
		}
	}

	return &Trend{
		Direction:  direction,
		RatePerDay: ratePerDay,
		Confidence: r2,
		Samples:    len(sorted),
	}, nil
}

func (t *Trend) String() string {
	return fmt.Sprintf("p95 trend: %s (%+.1f%%/day, r2=%.2f, %d runs)",
		t.Direction, t.RatePerDay, t.Confidence, t.Samples)
}

// linearRegression performs simple linear regression
// Returns: slope, intercept, R² (coefficient of determination)
func linearRegression(x, y []float64) (slope, intercept, r2 float64) {
	n := float64(len(x))

	if n == 0 {
		return 0, 0, 0
	}

	meanX := mean(x)
	meanY := mean(y)

	numerator := 0.0
	denominator := 0.0

	for i := 0; i < len(x); i++ {
		numerator += (x[i] - meanX) * (y[i] - meanY)
		denominator += (x[i] - meanX) * (x[i] - meanX)
	}

	if denominator == 0 {
		return 0, meanY, 0
	}

	slope = numerator / denominator
	intercept = meanY - slope*meanX

	ssTotal := 0.0 // Total sum of squares
	ssRes := 0.0   // Residual sum of squares

	for i := 0; i < len(x); i++ {
		predicted := slope*x[i] + intercept
		ssRes += (y[i] - predicted) * (y[i] - predicted)
		ssTotal += (y[i] - meanY) * (y[i] - meanY)
	}

	if ssTotal == 0 {
		r2 = 0
	} else {
		r2 = 1.0 - (ssRes / ssTotal)
	}

	// Clamp R² between 0 and 1
	if r2 < 0 {
		r2 = 0
	} else if r2 > 1 {
		r2 = 1
	}

	return slope, intercept, r2
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
