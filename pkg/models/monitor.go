package models

// PodSummary aggregates the resource samples collected for one pod of the
// system under test while a load run executed.
type PodSummary struct {
	Pod            string
	Samples        int
	MaxCPUMilli    int64
	AvgCPUMilli    float64
	MaxMemoryBytes int64
	AvgMemoryBytes float64
	Restarts       int
}
