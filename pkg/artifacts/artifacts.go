// Package artifacts manages the on-disk layout of run outputs: per-run
// log files, the failed-run archive, and the report directory.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FailedDirName is the subdirectory of the log dir that keeps the logs of
// runs which violated their thresholds.
const FailedDirName = "failed_runs"

// NAME_MAX on macOS/Linux (filename only, not path)
const maxFilenameLength = 255

// Layout holds the resolved artifact directories for a run.
type Layout struct {
	LogDir    string
	FailedDir string
	ReportDir string
}

// EnsureLayout creates the artifact directories if they do not exist.
func EnsureLayout(logDir, reportDir string) (*Layout, error) {
	layout := &Layout{
		LogDir:    logDir,
		FailedDir: filepath.Join(logDir, FailedDirName),
		ReportDir: reportDir,
	}
	for _, dir := range []string{layout.LogDir, layout.FailedDir, layout.ReportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
		}
	}
	return layout, nil
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	dashRuns    = regexp.MustCompile(`-+`)
)

// SanitizeName cleans a scenario or run name into a filesystem-safe file
// name segment. Hostile characters become dashes and repeated dashes
// collapse to one.
func SanitizeName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "run"
	}
	return s
}

// LogFileName builds the log file name for a run. The worker ID prefixes
// the name when running distributed so parallel workers never collide.
// The scenario segment is truncated to stay under the filesystem's
// filename limit.
func LogFileName(scenarioName, runID, workerID string) string {
	prefix := ""
	if workerID != "" {
		prefix = SanitizeName(workerID) + "_"
	}
	base := SanitizeName(scenarioName) + "_" + runID
	maxBase := maxFilenameLength - len(prefix) - len(".log")
	if len(base) > maxBase {
		base = base[:maxBase]
	}
	return prefix + base + ".log"
}

// PreserveFailedRunLog moves a run's log file into the failed archive so
// the logs of violated runs stay easy to find. Returns the new path.
func PreserveFailedRunLog(logPath, failedDir string) (string, error) {
	if err := os.MkdirAll(failedDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create failed-run directory %s: %w", failedDir, err)
	}
	dest := filepath.Join(failedDir, filepath.Base(logPath))
	if err := os.Rename(logPath, dest); err != nil {
		return "", fmt.Errorf("failed to preserve run log: %w", err)
	}
	return dest, nil
}
