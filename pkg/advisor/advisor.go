package advisor

import (
	"fmt"
	"math"

	"github.com/loadcart/http-load-runner/pkg/models"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

type AdviceType string

const (
	ReduceLoad AdviceType = "REDUCE_LOAD"
	SlowSpawn  AdviceType = "SLOW_SPAWN"
	NoAction   AdviceType = "NO_ACTION"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

type Advice struct {
	Type             AdviceType
	Severity         Severity
	WorstEndpoint    string
	WorstMetric      string
	OvershootRatio   float64
	PeakUsers        int
	SustainableUsers int
	Reason           string
	Suggestion       string
}

type Advisor struct {
	criticalRatio float64
	warningRatio  float64
	minUsers      int
}

func New() *Advisor {
	return &Advisor{
		criticalRatio: 2.0,
		warningRatio:  1.25,
		minUsers:      1,
	}
}

// Advise turns a run outcome into one actionable suggestion. Failed runs get
// a load reduction sized from the worst overshoot; clean runs get a headroom
// estimate against the spec's p95 limits.
func (a *Advisor) Advise(result *models.RunResult, spec threshold.Spec) *Advice {
	if len(result.Violations) == 0 {
		return a.headroom(result, spec)
	}

	worst := result.Violations[0]
	worstRatio := overshoot(worst)
	for _, v := range result.Violations[1:] {
		if ratio := overshoot(v); ratio > worstRatio {
			worstRatio = ratio
			worst = v
		}
	}

	advice := &Advice{
		Severity:       a.severity(worstRatio),
		WorstEndpoint:  worst.Endpoint,
		WorstMetric:    worst.Metric,
		OvershootRatio: worstRatio,
		PeakUsers:      result.PeakUsers,
		Reason: fmt.Sprintf("%s %.2f exceeds limit %.2f",
			worst.Metric, worst.Observed, worst.Limit),
	}

	if isErrorMetric(worst.Metric) {
		advice.Type = SlowSpawn
		advice.SustainableUsers = result.PeakUsers
		advice.Suggestion = "reduce spawn_rate or lengthen ramp_up before retrying"
		return advice
	}

	// First-order capacity estimate: latency scales with concurrency, so the
	// sustainable level is the peak scaled back by the overshoot
	sustainable := result.PeakUsers
	if worst.Observed > 0 {
		sustainable = int(float64(result.PeakUsers) * worst.Limit / worst.Observed)
	}
	if sustainable < a.minUsers {
		sustainable = a.minUsers
	}

	advice.Type = ReduceLoad
	advice.SustainableUsers = sustainable
	advice.Suggestion = fmt.Sprintf("rerun with peak_users: %d", sustainable)

	return advice
}

// headroom estimates how far a passing run sat below its p95 limits
func (a *Advisor) headroom(result *models.RunResult, spec threshold.Spec) *Advice {
	advice := &Advice{
		Type:             NoAction,
		Severity:         SeverityInfo,
		PeakUsers:        result.PeakUsers,
		SustainableUsers: result.PeakUsers,
		Reason:           fmt.Sprintf("all thresholds satisfied at %d users", result.PeakUsers),
	}

	utilization := 0.0
	for _, ep := range spec {
		for _, limit := range ep.Limits {
			if limit.Metric != threshold.MetricP95ResponseMs || limit.Max <= 0 {
				continue
			}
			observed := result.Observed[ep.Endpoint][limit.Metric]
			if ratio := observed / limit.Max; ratio > utilization {
				utilization = ratio
				advice.WorstEndpoint = ep.Endpoint
				advice.WorstMetric = limit.Metric
			}
		}
	}

	if utilization > 0 {
		advice.OvershootRatio = utilization
		advice.SustainableUsers = int(float64(result.PeakUsers) / utilization)
		advice.Reason = fmt.Sprintf("all thresholds satisfied at %d users, worst p95 at %.0f%% of limit",
			result.PeakUsers, utilization*100)
	}

	return advice
}

func (a *Advisor) severity(ratio float64) Severity {
	switch {
	case ratio >= a.criticalRatio:
		return SeverityCritical
	case ratio >= a.warningRatio:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// overshoot is observed over limit. A zero limit with traffic over it reads
// as infinite, which sorts it worst.
func overshoot(v threshold.Violation) float64 {
	if v.Limit == 0 {
		if v.Observed > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return v.Observed / v.Limit
}

func isErrorMetric(metric string) bool {
	return metric == threshold.MetricErrorRatePct || metric == threshold.MetricFailures
}

func (a *Advice) String() string {
	if a.Type == NoAction {
		return fmt.Sprintf("[%s] %s", a.Severity, a.Reason)
	}

	return fmt.Sprintf(
		"[%s] %s: %s\n"+
			"  Sustainable concurrency: ~%d users (ran at %d)\n"+
			"  Suggestion: %s",
		a.Severity,
		a.WorstEndpoint,
		a.Reason,
		a.SustainableUsers,
		a.PeakUsers,
		a.Suggestion,
	)
}
