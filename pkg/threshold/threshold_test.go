package threshold

import (
	"reflect"
	"testing"
)

func TestCheckSingleViolation(t *testing.T) {
	spec := Spec{
		{Endpoint: "login", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: 2000}}},
	}
	obs := Observed{
		"login": {MetricP95ResponseMs: 2500},
	}

	violations := Check(obs, spec)

	if len(violations) != 1 {
		t.Fatalf("Expected exactly 1 violation, got %d", len(violations))
	}
	v := violations[0]
	if v.Endpoint != "login" {
		t.Errorf("Expected endpoint 'login', got '%s'", v.Endpoint)
	}
	if v.Metric != MetricP95ResponseMs {
		t.Errorf("Expected metric '%s', got '%s'", MetricP95ResponseMs, v.Metric)
	}
	if v.Observed != 2500 {
		t.Errorf("Expected observed 2500, got %.2f", v.Observed)
	}
	if v.Limit != 2000 {
		t.Errorf("Expected limit 2000, got %.2f", v.Limit)
	}
}

func TestCheckEmptyObservedNeverViolates(t *testing.T) {
	spec := Spec{
		{Endpoint: "login", Limits: []Limit{
			{Metric: MetricP95ResponseMs, Max: 2000},
			{Metric: MetricErrorRatePct, Max: 1},
		}},
		{Endpoint: "browse", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: 500}}},
	}

	violations := Check(Observed{}, spec)

	if len(violations) != 0 {
		t.Errorf("Expected no violations for empty observed stats, got %d", len(violations))
	}
}

func TestCheckMissingMetricDefaultsToZero(t *testing.T) {
	spec := Spec{
		{Endpoint: "login", Limits: []Limit{
			{Metric: MetricP95ResponseMs, Max: 2000},
			{Metric: MetricErrorRatePct, Max: 1},
		}},
	}
	// Only the error rate is present; p95 must read as 0 and pass.
	obs := Observed{
		"login": {MetricErrorRatePct: 3.5},
	}

	violations := Check(obs, spec)

	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if violations[0].Metric != MetricErrorRatePct {
		t.Errorf("Expected the error rate to violate, got '%s'", violations[0].Metric)
	}
}

func TestCheckEqualityIsNotAViolation(t *testing.T) {
	spec := Spec{
		{Endpoint: "login", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: 2000}}},
	}
	obs := Observed{
		"login": {MetricP95ResponseMs: 2000},
	}

	if violations := Check(obs, spec); len(violations) != 0 {
		t.Errorf("Expected observed equal to limit to pass, got %d violations", len(violations))
	}
}

func TestCheckZeroLimitViolatedByAnyPositiveValue(t *testing.T) {
	spec := Spec{
		{Endpoint: "health", Limits: []Limit{{Metric: MetricFailures, Max: 0}}},
	}
	obs := Observed{
		"health": {MetricFailures: 1},
	}

	if violations := Check(obs, spec); len(violations) != 1 {
		t.Errorf("Expected a zero limit to catch any positive value, got %d violations", len(violations))
	}
}

func TestCheckOrderFollowsSpecDeclaration(t *testing.T) {
	spec := Spec{
		{Endpoint: "checkout", Limits: []Limit{
			{Metric: MetricP95ResponseMs, Max: 100},
			{Metric: MetricErrorRatePct, Max: 0},
		}},
		{Endpoint: "browse", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: 100}}},
	}
	obs := Observed{
		"browse":   {MetricP95ResponseMs: 900},
		"checkout": {MetricP95ResponseMs: 800, MetricErrorRatePct: 2},
	}

	violations := Check(obs, spec)

	if len(violations) != 3 {
		t.Fatalf("Expected 3 violations, got %d", len(violations))
	}
	// Declaration order, not map order: checkout's two limits first.
	if violations[0].Endpoint != "checkout" || violations[0].Metric != MetricP95ResponseMs {
		t.Errorf("Expected checkout/p95 first, got %s/%s", violations[0].Endpoint, violations[0].Metric)
	}
	if violations[1].Endpoint != "checkout" || violations[1].Metric != MetricErrorRatePct {
		t.Errorf("Expected checkout/error_rate second, got %s/%s", violations[1].Endpoint, violations[1].Metric)
	}
	if violations[2].Endpoint != "browse" {
		t.Errorf("Expected browse last, got %s", violations[2].Endpoint)
	}
}

func TestCheckIsDeterministic(t *testing.T) {
	spec := Spec{
		{Endpoint: "a", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: 10}}},
		{Endpoint: "b", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: 10}}},
		{Endpoint: "c", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: 10}}},
	}
	obs := Observed{
		"a": {MetricP95ResponseMs: 50},
		"b": {MetricP95ResponseMs: 50},
		"c": {MetricP95ResponseMs: 50},
	}

	first := Check(obs, spec)
	for i := 0; i < 10; i++ {
		if again := Check(obs, spec); !reflect.DeepEqual(first, again) {
			t.Fatalf("Expected identical output across calls, got %v then %v", first, again)
		}
	}
}

func TestCheckHasNoSideEffects(t *testing.T) {
	spec := Spec{
		{Endpoint: "login", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: 2000}}},
	}
	obs := Observed{
		"login": {MetricP95ResponseMs: 2500},
	}

	Check(obs, spec)

	if len(obs) != 1 || obs["login"][MetricP95ResponseMs] != 2500 {
		t.Error("Check modified the observed stats")
	}
	if len(spec) != 1 || spec[0].Limits[0].Max != 2000 {
		t.Error("Check modified the spec")
	}
}

func TestViolationString(t *testing.T) {
	v := Violation{Endpoint: "login", Metric: MetricP95ResponseMs, Observed: 2500, Limit: 2000}

	want := "login: p95_response_time_ms 2500.00 exceeds limit 2000.00"
	if v.String() != want {
		t.Errorf("Expected '%s', got '%s'", want, v.String())
	}
}

func TestDefaultSpecFor(t *testing.T) {
	spec := DefaultSpecFor([]string{"login", "browse"})

	if err := spec.Validate(); err != nil {
		t.Fatalf("Default spec failed validation: %v", err)
	}
	if len(spec) != 2 {
		t.Fatalf("Expected limits for 2 endpoints, got %d", len(spec))
	}
	if spec[0].Endpoint != "login" || spec[1].Endpoint != "browse" {
		t.Errorf("Expected endpoint order preserved, got %v", spec.Endpoints())
	}
	limits := spec.LimitsFor("login")
	if len(limits) != 2 {
		t.Fatalf("Expected 2 default limits, got %d", len(limits))
	}
	if limits[0].Metric != MetricP95ResponseMs || limits[0].Max != DefaultP95LimitMs {
		t.Errorf("Expected default p95 limit %d, got %s=%.0f", DefaultP95LimitMs, limits[0].Metric, limits[0].Max)
	}

	// A default-built spec passes observations within the defaults.
	obs := Observed{"login": {MetricP95ResponseMs: 1500, MetricErrorRatePct: 0.5}}
	if violations := Check(obs, spec); len(violations) != 0 {
		t.Errorf("Expected healthy stats to pass the default spec, got %v", violations)
	}
}

func TestSpecValidate(t *testing.T) {
	cases := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{
			"valid spec",
			Spec{{Endpoint: "login", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: 2000}}}},
			false,
		},
		{
			"empty spec",
			Spec{},
			false,
		},
		{
			"negative limit",
			Spec{{Endpoint: "login", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: -1}}}},
			true,
		},
		{
			"missing endpoint name",
			Spec{{Endpoint: "", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: 10}}}},
			true,
		},
		{
			"missing metric name",
			Spec{{Endpoint: "login", Limits: []Limit{{Metric: "", Max: 10}}}},
			true,
		},
		{
			"endpoint without limits",
			Spec{{Endpoint: "login"}},
			true,
		},
		{
			"duplicate endpoint",
			Spec{
				{Endpoint: "login", Limits: []Limit{{Metric: MetricP95ResponseMs, Max: 10}}},
				{Endpoint: "login", Limits: []Limit{{Metric: MetricErrorRatePct, Max: 1}}},
			},
			true,
		},
		{
			"duplicate metric",
			Spec{{Endpoint: "login", Limits: []Limit{
				{Metric: MetricP95ResponseMs, Max: 10},
				{Metric: MetricP95ResponseMs, Max: 20},
			}}},
			true,
		},
		{
			"zero limit is legal",
			Spec{{Endpoint: "login", Limits: []Limit{{Metric: MetricErrorRatePct, Max: 0}}}},
			false,
		},
	}

	for _, tc := range cases {
		err := tc.spec.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("Expected validation error for %s, got nil", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("Expected %s to validate, got: %v", tc.name, err)
		}
	}
}

func TestLimitsForUnknownEndpoint(t *testing.T) {
	spec := DefaultSpecFor([]string{"login"})

	if limits := spec.LimitsFor("unknown"); limits != nil {
		t.Errorf("Expected nil limits for unknown endpoint, got %v", limits)
	}
}
