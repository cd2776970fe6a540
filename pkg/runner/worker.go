package runner

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/loadcart/http-load-runner/pkg/scenario"
)

// totalWeight sums endpoint weights for the weighted pick
func totalWeight(endpoints []scenario.Endpoint) int {
	sum := 0
	for _, ep := range endpoints {
		sum += ep.Weight
	}
	return sum
}

// pickEndpoint chooses an endpoint by weight. The caller owns the RNG so
// workers never contend on a shared source.
func pickEndpoint(endpoints []scenario.Endpoint, weightSum int, rng *rand.Rand) scenario.Endpoint {
	pick := rng.Intn(weightSum)
	for _, ep := range endpoints {
		pick -= ep.Weight
		if pick < 0 {
			return ep
		}
	}
	return endpoints[len(endpoints)-1]
}

// worker issues requests until its context is cancelled, pacing itself
// between requests like a real user would
func (r *Runner) worker(ctx context.Context, id int) {
	defer r.wg.Done()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		endpoint := pickEndpoint(r.endpoints, r.weightSum, rng)
		r.execute(ctx, endpoint)

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.opts.Pacing):
		}
	}
}

// execute performs one request and records its outcome. A transport error
// or status >= 400 counts as a failure. A request aborted by shutdown is
// not counted at all.
func (r *Runner) execute(ctx context.Context, ep scenario.Endpoint) {
	var body io.Reader
	if ep.Body != "" {
		body = strings.NewReader(ep.Body)
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, r.scenario.BaseURL+ep.Path, body)
	if err != nil {
		r.recorder.Record(ep.Name, 0, true)
		r.metrics.ObserveRequest(ep.Name, 0, true)
		return
	}

	for key, value := range ep.Headers {
		req.Header.Set(key, value)
	}
	if ep.Body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	latency := time.Since(start)

	failed := false
	status := 0
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		failed = true
	} else {
		status = resp.StatusCode
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		failed = status >= 400
	}

	r.recorder.Record(ep.Name, latency, failed)
	r.metrics.ObserveRequest(ep.Name, latency.Seconds(), failed)

	if failed {
		r.logger.WithFields(logrus.Fields{
			"endpoint": ep.Name,
			"status":   status,
			"ms":       latency.Milliseconds(),
		}).Warn("request failed")
	}
}
