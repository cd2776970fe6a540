package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loadcart/http-load-runner/pkg/artifacts"
	"github.com/loadcart/http-load-runner/pkg/models"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

// WriteFiles writes the CSV and HTML reports plus the raw stats JSON into
// dir, named by scenario and timestamp so successive runs sit side by
// side. Returns the written paths.
func WriteFiles(rep *Report, observed threshold.Observed, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	timestamp := rep.GeneratedAt.Format("20060102-150405")
	name := artifacts.SanitizeName(rep.Scenario)
	var written []string

	csvPath := filepath.Join(dir, fmt.Sprintf("load-report-%s-%s.csv", name, timestamp))
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	if err := GenerateCSV(rep, csvFile); err != nil {
		csvFile.Close()
		return nil, fmt.Errorf("failed to write CSV report: %w", err)
	}
	csvFile.Close()
	written = append(written, csvPath)

	htmlPath := filepath.Join(dir, fmt.Sprintf("load-report-%s-%s.html", name, timestamp))
	htmlFile, err := os.Create(htmlPath)
	if err != nil {
		return written, fmt.Errorf("failed to create report file: %w", err)
	}
	if err := GenerateHTML(rep, htmlFile); err != nil {
		htmlFile.Close()
		return written, fmt.Errorf("failed to write HTML report: %w", err)
	}
	htmlFile.Close()
	written = append(written, htmlPath)

	statsPath := filepath.Join(dir, fmt.Sprintf("stats-%s-%s.json", name, timestamp))
	statsFile, err := os.Create(statsPath)
	if err != nil {
		return written, fmt.Errorf("failed to create stats file: %w", err)
	}
	encoder := json.NewEncoder(statsFile)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(models.StatsFile{
		Scenario:    rep.Scenario,
		RunID:       rep.RunID,
		GeneratedAt: rep.GeneratedAt,
		Observed:    observed,
	})
	statsFile.Close()
	if err != nil {
		return written, fmt.Errorf("failed to write stats file: %w", err)
	}
	written = append(written, statsPath)

	return written, nil
}
