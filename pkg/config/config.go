package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Target & run behavior
	RequestTimeout     time.Duration
	TickInterval       time.Duration
	InsecureSkipVerify bool

	// Prometheus
	PrometheusURL string
	MetricsPort   int

	// Check window for pulling observed stats from monitoring
	CheckWindow time.Duration

	// Storage
	StoreResults bool
	DatabaseURL  string

	// SUT monitoring
	MonitorInterval time.Duration

	// Artifacts
	ReportDir string
	LogDir    string
	LogLevel  string

	// Distributed runs: identifies this worker in log file names
	WorkerID string

	// Output
	OutputFormat string // text, json
	Verbose      bool
}

// LoadEnv loads .env and .env.local into the process environment when the
// files exist. Missing files are not an error; explicit environment
// variables win because godotenv never overwrites existing keys.
func LoadEnv() {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	return &Config{
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		TickInterval:       time.Duration(getEnvInt("TICK_INTERVAL_SECONDS", 1)) * time.Second,
		InsecureSkipVerify: getEnvBool("INSECURE_SKIP_VERIFY", false),
		PrometheusURL:      getEnv("PROMETHEUS_URL", "http://localhost:9090"),
		MetricsPort:        getEnvInt("METRICS_PORT", 9400),
		CheckWindow:        time.Duration(getEnvInt("CHECK_WINDOW_MINUTES", 15)) * time.Minute,
		StoreResults:       getEnvBool("STORE_RESULTS", true),
		DatabaseURL:        getEnv("DATABASE_URL", "host=localhost port=5432 user=loaduser password=devpassword dbname=loadrunner sslmode=disable"),
		MonitorInterval:    time.Duration(getEnvInt("MONITOR_INTERVAL_SECONDS", 10)) * time.Second,
		ReportDir:          getEnv("REPORT_DIR", "reports"),
		LogDir:             getEnv("LOG_DIR", "test-logs"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		WorkerID:           getEnv("WORKER_ID", ""),
		OutputFormat:       "text",
		Verbose:            false,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// UseCIPreset tunes the config for pipeline runs: nothing persisted, short
// timeouts, quiet output.
func (c *Config) UseCIPreset() {
	c.StoreResults = false
	c.RequestTimeout = 5 * time.Second
	c.CheckWindow = 5 * time.Minute
	c.MonitorInterval = 30 * time.Second
}

// UseSmokePreset tunes the config for quick local smoke runs.
func (c *Config) UseSmokePreset() {
	c.StoreResults = false
	c.RequestTimeout = 3 * time.Second
	c.CheckWindow = 5 * time.Minute
}

// UseSoakPreset tunes the config for long soak runs: wider check windows
// and a gentler monitor cadence.
func (c *Config) UseSoakPreset() {
	c.RequestTimeout = 30 * time.Second
	c.CheckWindow = time.Hour
	c.MonitorInterval = time.Minute
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.StoreResults && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set when result storage is enabled")
	}
	if c.RequestTimeout < time.Second {
		return fmt.Errorf("request timeout must be at least 1 second")
	}
	if c.TickInterval < 100*time.Millisecond {
		return fmt.Errorf("tick interval must be at least 100ms")
	}
	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be between 1 and 65535, got %d", c.MetricsPort)
	}
	if c.CheckWindow < time.Minute {
		return fmt.Errorf("check window must be at least 1 minute")
	}
	if c.MonitorInterval < time.Second {
		return fmt.Errorf("monitor interval must be at least 1 second")
	}
	switch c.OutputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("output format must be text or json, got %q", c.OutputFormat)
	}
	return nil
}
