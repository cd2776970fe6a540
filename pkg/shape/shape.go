// Package shape computes the target concurrency for a load test as a
// function of elapsed run time. A Shape is polled by the runner on a fixed
// cadence; it answers either "run this many users, adding at most this many
// per second" or "the test is over."
package shape

import (
	"math"
	"time"
)

// Step is the stepper's answer for a single tick: the number of concurrent
// users the generator should be running and how fast it may add them.
type Step struct {
	Users     int
	SpawnRate float64
}

// Shape yields the target concurrency for any elapsed point of a run.
// Tick returns ok=false once the run is over. Implementations are pure:
// the same elapsed time always produces the same step.
type Shape interface {
	Tick(elapsed time.Duration) (Step, bool)
	Name() string
	TotalDuration() time.Duration
	Phases() []Phase
}

// Phase describes one named interval of a shape's timeline, used for
// reports and phase-change logging. Tick is authoritative; a boundary
// instant belongs to the later phase.
type Phase struct {
	Name  string
	Start time.Duration
	End   time.Duration
}

// PhaseAt names the phase containing an elapsed instant, or "done" when
// the shape is exhausted.
func PhaseAt(s Shape, elapsed time.Duration) string {
	for _, p := range s.Phases() {
		if elapsed >= p.Start && elapsed < p.End {
			return p.Name
		}
	}
	return "done"
}

// interpolate returns the integer target on the line from "from" to "to" at
// fraction frac, floored and clamped to a minimum of 1. A generator treats
// a target of 0 as "stop", so mid-phase values never drop below 1.
func interpolate(from, to, frac float64) int {
	users := int(math.Floor(from + (to-from)*frac))
	if users < 1 {
		users = 1
	}
	return users
}
