package storage

import (
	"context"

	"github.com/loadcart/http-load-runner/pkg/models"
)

// Store defines the interface for run history persistence
type Store interface {
	SaveRun(ctx context.Context, record *models.RunRecord) error
	GetRun(ctx context.Context, id string) (*models.RunRecord, error)
	ListRuns(ctx context.Context, scenario string, limit int) ([]*models.RunRecord, error)
	GetRunViolations(ctx context.Context, runID string) ([]*models.StoredViolation, error)

	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	URL     string
	Timeout int
}
