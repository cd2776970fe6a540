package shape

import (
	"fmt"
	"time"
)

// SpikeConfig configures a baseline-spike-baseline shape.
type SpikeConfig struct {
	BaselineUsers int
	PeakUsers     int
	WarmUp        time.Duration
	Spike         time.Duration
	CoolDown      time.Duration
	SpawnRate     float64
}

// SpikeShape runs a flat baseline, jumps to a flat peak for the spike
// window, then returns to baseline. Every phase is a step function; there
// is no interpolation.
type SpikeShape struct {
	cfg SpikeConfig
}

// NewSpikeShape validates the configuration once.
func NewSpikeShape(cfg SpikeConfig) (*SpikeShape, error) {
	if cfg.BaselineUsers < 1 {
		return nil, fmt.Errorf("spike shape: baseline users must be at least 1, got %d", cfg.BaselineUsers)
	}
	if cfg.PeakUsers < cfg.BaselineUsers {
		return nil, fmt.Errorf("spike shape: peak users %d must be at least baseline %d", cfg.PeakUsers, cfg.BaselineUsers)
	}
	if cfg.WarmUp < 0 || cfg.Spike < 0 || cfg.CoolDown < 0 {
		return nil, fmt.Errorf("spike shape: phase durations must not be negative")
	}
	if cfg.WarmUp+cfg.Spike+cfg.CoolDown <= 0 {
		return nil, fmt.Errorf("spike shape: total duration must be positive")
	}
	if cfg.SpawnRate <= 0 {
		return nil, fmt.Errorf("spike shape: spawn rate must be positive, got %.2f", cfg.SpawnRate)
	}
	return &SpikeShape{cfg: cfg}, nil
}

func (s *SpikeShape) Name() string { return "spike" }

func (s *SpikeShape) TotalDuration() time.Duration {
	return s.cfg.WarmUp + s.cfg.Spike + s.cfg.CoolDown
}

func (s *SpikeShape) Phases() []Phase {
	c := s.cfg
	return []Phase{
		{Name: "warm-up", Start: 0, End: c.WarmUp},
		{Name: "spike", Start: c.WarmUp, End: c.WarmUp + c.Spike},
		{Name: "cool-down", Start: c.WarmUp + c.Spike, End: c.WarmUp + c.Spike + c.CoolDown},
	}
}

// Tick returns the flat target for an elapsed run time. Boundary instants
// belong to the later phase: at exactly WarmUp the spike target applies,
// and at exactly the total duration the test is over.
func (s *SpikeShape) Tick(elapsed time.Duration) (Step, bool) {
	if elapsed < 0 {
		elapsed = 0
	}
	c := s.cfg
	warmEnd := c.WarmUp
	spikeEnd := warmEnd + c.Spike
	coolEnd := spikeEnd + c.CoolDown

	switch {
	case elapsed < warmEnd:
		return Step{Users: c.BaselineUsers, SpawnRate: c.SpawnRate}, true
	case elapsed < spikeEnd:
		return Step{Users: c.PeakUsers, SpawnRate: c.SpawnRate}, true
	case elapsed < coolEnd:
		return Step{Users: c.BaselineUsers, SpawnRate: c.SpawnRate}, true
	default:
		return Step{}, false
	}
}
