// Package logging builds run-scoped logrus loggers. Each load run logs to
// its own file under the configured log directory; the CLI keeps its own
// console voice and the file carries the detail.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// NewRunLogger opens filename under dir and returns a logger writing to
// it. The caller owns the returned file handle and closes it when the run
// ends. Unknown level names fall back to info.
func NewRunLogger(level, dir, filename string) (*os.File, *logrus.Logger, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	logger := logrus.New()
	logger.SetOutput(f)
	logger.SetLevel(parsed)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	return f, logger, nil
}

// NewNopLogger returns a logger that discards everything, for callers
// that run without a log file.
func NewNopLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
