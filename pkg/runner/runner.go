// Package runner drives a load scenario: it polls the shape on a fixed
// tick, grows or shrinks the worker pool toward the target, and turns the
// recorded stats into a run result checked against the scenario's
// thresholds.
package runner

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/loadcart/http-load-runner/pkg/logging"
	"github.com/loadcart/http-load-runner/pkg/models"
	"github.com/loadcart/http-load-runner/pkg/scenario"
	"github.com/loadcart/http-load-runner/pkg/shape"
	"github.com/loadcart/http-load-runner/pkg/stats"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

// Options tunes a run. Zero values fall back to sensible defaults.
type Options struct {
	RunID              string
	TickInterval       time.Duration
	Pacing             time.Duration // delay between one worker's requests
	Timeout            time.Duration // per-request timeout
	InsecureSkipVerify bool
	MetricsPort        int // 0 disables the scrape endpoint
	Headless           bool
	Logger             *logrus.Logger
}

// Runner executes one scenario
type Runner struct {
	scenario *scenario.Scenario
	shape    shape.Shape
	spec     threshold.Spec
	opts     Options

	client   *http.Client
	recorder *stats.Recorder
	metrics  *Metrics
	logger   *logrus.Logger

	endpoints []scenario.Endpoint
	weightSum int

	mutex   sync.Mutex
	cancels []context.CancelFunc
	nextID  int
	wg      sync.WaitGroup
}

func New(sc *scenario.Scenario, opts Options) (*Runner, error) {
	if len(sc.Endpoints) == 0 {
		return nil, errors.New("scenario has no endpoints")
	}

	loadShape, err := sc.BuildShape()
	if err != nil {
		return nil, fmt.Errorf("failed to build load shape: %w", err)
	}

	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Pacing <= 0 {
		opts.Pacing = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	client := &http.Client{Timeout: opts.Timeout}
	if opts.InsecureSkipVerify {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Runner{
		scenario:  sc,
		shape:     loadShape,
		spec:      sc.BuildSpec(),
		opts:      opts,
		client:    client,
		recorder:  stats.NewRecorder(),
		metrics:   NewMetrics(),
		logger:    opts.Logger,
		endpoints: sc.Endpoints,
		weightSum: totalWeight(sc.Endpoints),
	}, nil
}

// RunID returns the identifier the run will report under
func (r *Runner) RunID() string {
	return r.opts.RunID
}

// Run drives the shape until it ends or ctx is cancelled, then evaluates
// the thresholds. A cancelled run still returns the partial result.
func (r *Runner) Run(ctx context.Context) (*models.RunResult, error) {
	started := time.Now()

	if r.opts.MetricsPort > 0 {
		server := r.metrics.Serve(r.opts.MetricsPort)
		defer server.Shutdown(context.Background())
	}

	r.logger.WithFields(logrus.Fields{
		"run_id":   r.opts.RunID,
		"scenario": r.scenario.Name,
		"shape":    r.shape.Name(),
		"duration": r.shape.TotalDuration().String(),
	}).Info("run starting")

	// First adjustment happens at t=0, not after the first tick
	if step, ok := r.shape.Tick(0); ok {
		r.adjust(ctx, step)
		r.metrics.SetUsers(r.ActiveWorkers(), step.Users)
	}

	ticker := time.NewTicker(r.opts.TickInterval)
	defer ticker.Stop()

	currentPhase := shape.PhaseAt(r.shape, 0)
	aborted := false

loop:
	for {
		select {
		case <-ctx.Done():
			aborted = true
			break loop
		case <-ticker.C:
			elapsed := time.Since(started)

			step, ok := r.shape.Tick(elapsed)
			if !ok {
				break loop
			}

			if phase := shape.PhaseAt(r.shape, elapsed); phase != currentPhase {
				fmt.Printf("[INFO] Phase %s: targeting %d users\n", phase, step.Users)
				r.logger.WithFields(logrus.Fields{
					"phase":   phase,
					"target":  step.Users,
					"elapsed": elapsed.Round(time.Second).String(),
				}).Info("phase change")
				currentPhase = phase
			}

			r.adjust(ctx, step)

			active := r.ActiveWorkers()
			r.metrics.SetUsers(active, step.Users)

			if !r.opts.Headless {
				requests, failures := r.recorder.Totals()
				fmt.Printf("[INFO] t=%s users=%d/%d requests=%d failures=%d\n",
					elapsed.Round(time.Second), active, step.Users, requests, failures)
			}
		}
	}

	r.stopAll()
	r.wg.Wait()
	r.metrics.SetUsers(0, 0)

	finished := time.Now()
	elapsed := finished.Sub(started)

	if aborted {
		fmt.Printf("[WARN] Run aborted after %s\n", elapsed.Round(time.Second))
		r.logger.WithField("elapsed", elapsed.String()).Warn("run aborted")
	}

	observed := r.recorder.Snapshot(elapsed)
	requests, failures := r.recorder.Totals()

	result := &models.RunResult{
		RunID:         r.opts.RunID,
		Scenario:      r.scenario.Name,
		Profile:       string(r.scenario.Profile),
		ShapeName:     r.shape.Name(),
		BaseURL:       r.scenario.BaseURL,
		StartedAt:     started,
		FinishedAt:    finished,
		Duration:      elapsed,
		PeakUsers:     r.scenario.Shape.PeakUsers,
		TotalRequests: requests,
		TotalFailures: failures,
		EndpointOrder: r.recorder.Endpoints(),
		Observed:      observed,
		Patterns:      r.recorder.Patterns(),
		Violations:    threshold.Check(observed, r.spec),
	}

	r.logger.WithFields(logrus.Fields{
		"run_id":     result.RunID,
		"requests":   result.TotalRequests,
		"failures":   result.TotalFailures,
		"violations": len(result.Violations),
	}).Info("run finished")

	return result, nil
}

// ActiveWorkers reports the commanded worker count
func (r *Runner) ActiveWorkers() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.cancels)
}

// adjust moves the worker pool toward the target, spawning at most
// SpawnRate users per second and stopping surplus workers immediately
func (r *Runner) adjust(ctx context.Context, step shape.Step) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	active := len(r.cancels)

	if active < step.Users {
		spawn := step.Users - active

		maxSpawn := int(math.Ceil(step.SpawnRate * r.opts.TickInterval.Seconds()))
		if maxSpawn < 1 {
			maxSpawn = 1
		}
		if spawn > maxSpawn {
			spawn = maxSpawn
		}

		for i := 0; i < spawn; i++ {
			workerCtx, cancel := context.WithCancel(ctx)
			r.cancels = append(r.cancels, cancel)
			r.wg.Add(1)
			go r.worker(workerCtx, r.nextID)
			r.nextID++
		}
		return
	}

	for len(r.cancels) > step.Users {
		last := len(r.cancels) - 1
		r.cancels[last]()
		r.cancels = r.cancels[:last]
	}
}

func (r *Runner) stopAll() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil
}
