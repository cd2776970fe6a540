package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/loadcart/http-load-runner/pkg/models"
)

// Monitor samples pod resource usage in the target namespace while a load
// run executes
type Monitor struct {
	clientset     *kubernetes.Clientset
	metricsClient *metricsv.Clientset
	namespace     string
	interval      time.Duration

	mutex sync.Mutex
	order []string
	pods  map[string]*podStats
}

type podStats struct {
	samples   int
	maxCPU    int64
	sumCPU    int64
	maxMemory int64
	sumMemory int64
	restarts  int
}

func New(namespace string, interval time.Duration) (*Monitor, error) {
	var kubeconfig string
	if home := homedir.HomeDir(); home != "" {
		kubeconfig = filepath.Join(home, ".kube", "config")
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	metricsClient, err := metricsv.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}

	return &Monitor{
		clientset:     clientset,
		metricsClient: metricsClient,
		namespace:     namespace,
		interval:      interval,
		pods:          make(map[string]*podStats),
	}, nil
}

// Namespace returns the monitored namespace
func (m *Monitor) Namespace() string {
	return m.namespace
}

// ClassifyTarget classifies the monitored namespace's environment
func (m *Monitor) ClassifyTarget(ctx context.Context) Environment {
	return ClassifyNamespace(ctx, m.clientset, m.namespace)
}

// Run samples until the context is cancelled. Sampling errors degrade to
// warnings so a flaky metrics API never fails the load run.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Sample(ctx); err != nil {
				fmt.Printf("[WARN] Pod monitor: %v\n", err)
			}
		}
	}
}

// Sample takes one reading of every pod in the namespace
func (m *Monitor) Sample(ctx context.Context) error {
	podMetrics, err := m.metricsClient.MetricsV1beta1().PodMetricses(m.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to get pod metrics: %w", err)
	}

	for _, pm := range podMetrics.Items {
		var cpuMilli, memBytes int64
		for _, container := range pm.Containers {
			cpu := container.Usage[corev1.ResourceCPU]
			mem := container.Usage[corev1.ResourceMemory]
			cpuMilli += cpu.MilliValue()
			memBytes += mem.Value()
		}
		m.record(pm.Name, cpuMilli, memBytes)
	}

	pods, err := m.clientset.CoreV1().Pods(m.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list pods: %w", err)
	}

	for _, pod := range pods.Items {
		restarts := 0
		for _, status := range pod.Status.ContainerStatuses {
			restarts += int(status.RestartCount)
		}
		m.recordRestarts(pod.Name, restarts)
	}

	return nil
}

func (m *Monitor) record(pod string, cpuMilli, memBytes int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stats, exists := m.pods[pod]
	if !exists {
		stats = &podStats{}
		m.pods[pod] = stats
		m.order = append(m.order, pod)
	}

	stats.samples++
	stats.sumCPU += cpuMilli
	stats.sumMemory += memBytes
	if cpuMilli > stats.maxCPU {
		stats.maxCPU = cpuMilli
	}
	if memBytes > stats.maxMemory {
		stats.maxMemory = memBytes
	}
}

// recordRestarts only tracks pods the metrics API already reported, so
// terminated pods do not show up with zero samples
func (m *Monitor) recordRestarts(pod string, restarts int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stats, exists := m.pods[pod]
	if !exists {
		return
	}
	if restarts > stats.restarts {
		stats.restarts = restarts
	}
}

// Summarize returns per-pod aggregates in first-seen order
func (m *Monitor) Summarize() []models.PodSummary {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	summaries := make([]models.PodSummary, 0, len(m.order))
	for _, pod := range m.order {
		stats := m.pods[pod]

		summary := models.PodSummary{
			Pod:            pod,
			Samples:        stats.samples,
			MaxCPUMilli:    stats.maxCPU,
			MaxMemoryBytes: stats.maxMemory,
			Restarts:       stats.restarts,
		}
		if stats.samples > 0 {
			summary.AvgCPUMilli = float64(stats.sumCPU) / float64(stats.samples)
			summary.AvgMemoryBytes = float64(stats.sumMemory) / float64(stats.samples)
		}

		summaries = append(summaries, summary)
	}

	return summaries
}
