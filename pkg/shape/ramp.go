package shape

import (
	"fmt"
	"time"
)

// RampConfig configures a ramp-then-hold-then-decay shape.
type RampConfig struct {
	PeakUsers int
	RampUp    time.Duration
	Hold      time.Duration
	Decay     time.Duration
	SpawnRate float64
}

// RampShape grows linearly from 1 user to the configured peak, holds the
// peak, then decays linearly back down to 1.
type RampShape struct {
	cfg RampConfig
}

// NewRampShape validates the configuration once. A stepper is never built
// from an invalid config, so Tick does not defend against one.
func NewRampShape(cfg RampConfig) (*RampShape, error) {
	if cfg.PeakUsers < 1 {
		return nil, fmt.Errorf("ramp shape: peak users must be at least 1, got %d", cfg.PeakUsers)
	}
	if cfg.RampUp < 0 || cfg.Hold < 0 || cfg.Decay < 0 {
		return nil, fmt.Errorf("ramp shape: phase durations must not be negative")
	}
	if cfg.RampUp+cfg.Hold+cfg.Decay <= 0 {
		return nil, fmt.Errorf("ramp shape: total duration must be positive")
	}
	if cfg.SpawnRate <= 0 {
		return nil, fmt.Errorf("ramp shape: spawn rate must be positive, got %.2f", cfg.SpawnRate)
	}
	return &RampShape{cfg: cfg}, nil
}

func (s *RampShape) Name() string { return "ramp" }

func (s *RampShape) TotalDuration() time.Duration {
	return s.cfg.RampUp + s.cfg.Hold + s.cfg.Decay
}

func (s *RampShape) Phases() []Phase {
	c := s.cfg
	return []Phase{
		{Name: "ramp-up", Start: 0, End: c.RampUp},
		{Name: "hold", Start: c.RampUp, End: c.RampUp + c.Hold},
		{Name: "decay", Start: c.RampUp + c.Hold, End: c.RampUp + c.Hold + c.Decay},
	}
}

// Tick returns the target for an elapsed run time. The integer target is
// the floor of the continuous interpolation, clamped to a minimum of 1.
// Comparisons are strict: reaching a boundary switches to the next phase,
// and reaching the total duration ends the test.
func (s *RampShape) Tick(elapsed time.Duration) (Step, bool) {
	if elapsed < 0 {
		elapsed = 0
	}
	c := s.cfg
	rampEnd := c.RampUp
	holdEnd := rampEnd + c.Hold
	decayEnd := holdEnd + c.Decay

	switch {
	case elapsed < rampEnd:
		frac := elapsed.Seconds() / c.RampUp.Seconds()
		return Step{Users: interpolate(1, float64(c.PeakUsers), frac), SpawnRate: c.SpawnRate}, true
	case elapsed < holdEnd:
		return Step{Users: c.PeakUsers, SpawnRate: c.SpawnRate}, true
	case elapsed < decayEnd:
		frac := (elapsed - holdEnd).Seconds() / c.Decay.Seconds()
		return Step{Users: interpolate(float64(c.PeakUsers), 1, frac), SpawnRate: c.SpawnRate}, true
	default:
		return Step{}, false
	}
}
