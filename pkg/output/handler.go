package output

import (
	"context"
	"fmt"
	"io"

	"github.com/loadcart/http-load-runner/pkg/advisor"
	"github.com/loadcart/http-load-runner/pkg/models"
)

// Handler defines the interface for output formatting
type Handler interface {
	DisplayRun(ctx context.Context, result *models.RunResult, advice *advisor.Advice) error
	DisplayHistory(ctx context.Context, records []*models.RunRecord, trend *advisor.Trend) error
	DisplayViolations(ctx context.Context, record *models.RunRecord) error
	Format() string
}

// NewHandler picks the handler for a format name
func NewHandler(format string, writer io.Writer) (Handler, error) {
	switch format {
	case "", "text":
		return &TextHandler{writer: writer}, nil
	case "json":
		return &JSONHandler{writer: writer}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
