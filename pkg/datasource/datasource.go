package datasource

import (
	"context"
	"time"

	"github.com/loadcart/http-load-runner/pkg/threshold"
)

// DataSource defines the interface for collecting observed endpoint stats
type DataSource interface {
	FetchStats(ctx context.Context, endpoints []string, window time.Duration) (threshold.Observed, error)
	IsAvailable(ctx context.Context) bool
	Name() string
}

type Config struct {
	PrometheusURL string
	Window        time.Duration
	Timeout       time.Duration
}
