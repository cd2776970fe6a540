package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/loadcart/http-load-runner/pkg/models"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

// FileSource replays the stats JSON written by a previous run, so thresholds
// can be re-evaluated without rerunning the load.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// FetchStats loads the stats file. The endpoints and window arguments are
// ignored; the file already fixes both.
func (f *FileSource) FetchStats(ctx context.Context, endpoints []string, window time.Duration) (threshold.Observed, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats file: %w", err)
	}

	var stats models.StatsFile
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to parse stats file %s: %w", f.path, err)
	}

	if stats.Observed == nil {
		return threshold.Observed{}, nil
	}
	return stats.Observed, nil
}

func (f *FileSource) IsAvailable(ctx context.Context) bool {
	info, err := os.Stat(f.path)
	return err == nil && !info.IsDir()
}

func (f *FileSource) Name() string {
	return "StatsFile"
}
