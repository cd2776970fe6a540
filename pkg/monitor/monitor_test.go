package monitor

import (
	"testing"
	"time"
)

func newTestMonitor() *Monitor {
	return &Monitor{
		namespace: "shop-staging",
		interval:  10 * time.Second,
		pods:      make(map[string]*podStats),
	}
}

func TestSummarize(t *testing.T) {
	m := newTestMonitor()

	m.record("api-7d9f", 100, 200*1024*1024)
	m.record("api-7d9f", 300, 400*1024*1024)
	m.record("api-7d9f", 200, 300*1024*1024)

	summaries := m.Summarize()
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 pod summary, got %d", len(summaries))
	}

	s := summaries[0]
	if s.Pod != "api-7d9f" {
		t.Errorf("Expected pod api-7d9f, got %s", s.Pod)
	}
	if s.Samples != 3 {
		t.Errorf("Expected 3 samples, got %d", s.Samples)
	}
	if s.MaxCPUMilli != 300 {
		t.Errorf("Expected max CPU 300m, got %dm", s.MaxCPUMilli)
	}
	if s.AvgCPUMilli != 200 {
		t.Errorf("Expected avg CPU 200m, got %fm", s.AvgCPUMilli)
	}
	if s.MaxMemoryBytes != 400*1024*1024 {
		t.Errorf("Expected max memory 400Mi, got %d bytes", s.MaxMemoryBytes)
	}
	if s.AvgMemoryBytes != 300*1024*1024 {
		t.Errorf("Expected avg memory 300Mi, got %f bytes", s.AvgMemoryBytes)
	}
}

func TestSummarizeFirstSeenOrder(t *testing.T) {
	m := newTestMonitor()

	m.record("worker-2", 50, 100)
	m.record("api-1", 80, 100)
	m.record("worker-2", 60, 100)

	summaries := m.Summarize()
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 pod summaries, got %d", len(summaries))
	}
	if summaries[0].Pod != "worker-2" || summaries[1].Pod != "api-1" {
		t.Errorf("Expected first-seen order [worker-2 api-1], got [%s %s]",
			summaries[0].Pod, summaries[1].Pod)
	}
}

func TestRecordRestarts(t *testing.T) {
	m := newTestMonitor()

	m.record("api-1", 100, 100)
	m.recordRestarts("api-1", 2)
	m.recordRestarts("api-1", 1) // stale reading must not regress the count

	summaries := m.Summarize()
	if summaries[0].Restarts != 2 {
		t.Errorf("Expected 2 restarts, got %d", summaries[0].Restarts)
	}
}

func TestRecordRestartsUnknownPod(t *testing.T) {
	m := newTestMonitor()

	m.recordRestarts("ghost-pod", 5)

	if len(m.Summarize()) != 0 {
		t.Error("Expected restart-only pods to be ignored")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	m := newTestMonitor()

	if summaries := m.Summarize(); len(summaries) != 0 {
		t.Errorf("Expected no summaries before sampling, got %d", len(summaries))
	}
}

func TestClassifyLabels(t *testing.T) {
	tests := []struct {
		name     string
		labels   map[string]string
		expected Environment
	}{
		{"environment label production", map[string]string{"environment": "production"}, EnvironmentProduction},
		{"environment label prd", map[string]string{"environment": "prd"}, EnvironmentProduction},
		{"environment label staging", map[string]string{"environment": "staging"}, EnvironmentStaging},
		{"environment label test", map[string]string{"environment": "test"}, EnvironmentDevelopment},
		{"environment label uppercase", map[string]string{"environment": " PROD "}, EnvironmentProduction},
		{"tier label prod", map[string]string{"tier": "prod"}, EnvironmentProduction},
		{"tier label stage", map[string]string{"tier": "stage"}, EnvironmentStaging},
		{"tier label dev", map[string]string{"tier": "dev"}, EnvironmentDevelopment},
		{"unrelated labels", map[string]string{"team": "payments"}, EnvironmentUnknown},
		{"no labels", map[string]string{}, EnvironmentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyLabels(tt.labels); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestDetectEnvironmentFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected Environment
	}{
		{"shop-production", EnvironmentProduction},
		{"prod-eu-west", EnvironmentProduction},
		{"shop-staging", EnvironmentStaging},
		{"uat-payments", EnvironmentStaging},
		{"dev-sandbox", EnvironmentDevelopment},
		{"demo", EnvironmentDevelopment},
		{"localhost", EnvironmentDevelopment},
		{"payments", EnvironmentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectEnvironmentFromName(tt.name); got != tt.expected {
				t.Errorf("Expected %s for %s, got %s", tt.expected, tt.name, got)
			}
		})
	}
}

func TestGetEnvironmentConfig(t *testing.T) {
	if GetEnvironmentConfig(EnvironmentProduction).AllowLoadTest {
		t.Error("Expected production to refuse load tests")
	}
	if !GetEnvironmentConfig(EnvironmentStaging).AllowLoadTest {
		t.Error("Expected staging to allow load tests")
	}
	if !GetEnvironmentConfig(EnvironmentUnknown).AllowLoadTest {
		t.Error("Expected unknown environments to allow load tests")
	}
	if !GetEnvironmentConfig(Environment("weird")).AllowLoadTest {
		t.Error("Expected unrecognized value to fall back to unknown policy")
	}
}
