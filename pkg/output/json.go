package output

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/loadcart/http-load-runner/pkg/advisor"
	"github.com/loadcart/http-load-runner/pkg/models"
)

// JSONHandler renders machine-readable output for CI pipelines
type JSONHandler struct {
	writer io.Writer
}

func (h *JSONHandler) DisplayRun(ctx context.Context, result *models.RunResult, advice *advisor.Advice) error {
	output := map[string]interface{}{
		"run":       result,
		"passed":    result.Passed(),
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if advice != nil {
		output["advice"] = advice
	}

	return h.encode(output)
}

func (h *JSONHandler) DisplayHistory(ctx context.Context, records []*models.RunRecord, trend *advisor.Trend) error {
	output := map[string]interface{}{
		"runs":      records,
		"count":     len(records),
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if trend != nil {
		output["trend"] = trend
	}

	return h.encode(output)
}

func (h *JSONHandler) DisplayViolations(ctx context.Context, record *models.RunRecord) error {
	output := map[string]interface{}{
		"run":             record,
		"violation_count": record.ViolationCount,
		"timestamp":       time.Now().Format(time.RFC3339),
	}

	return h.encode(output)
}

func (h *JSONHandler) Format() string {
	return "json"
}

func (h *JSONHandler) encode(output map[string]interface{}) error {
	encoder := json.NewEncoder(h.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
