package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/loadcart/http-load-runner/pkg/advisor"
	"github.com/loadcart/http-load-runner/pkg/artifacts"
	"github.com/loadcart/http-load-runner/pkg/config"
	"github.com/loadcart/http-load-runner/pkg/converter"
	"github.com/loadcart/http-load-runner/pkg/datasource"
	"github.com/loadcart/http-load-runner/pkg/logging"
	"github.com/loadcart/http-load-runner/pkg/monitor"
	"github.com/loadcart/http-load-runner/pkg/output"
	"github.com/loadcart/http-load-runner/pkg/report"
	"github.com/loadcart/http-load-runner/pkg/runner"
	"github.com/loadcart/http-load-runner/pkg/scenario"
	"github.com/loadcart/http-load-runner/pkg/storage"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

var (
	// Run flags
	scenarioPath string
	baseURL      string
	profileName  string
	peakUsers    int
	spawnRate    float64
	maxDuration  time.Duration
	outputFormat string
	saveResults  bool
	dryRun       bool
	headless     bool
	force        bool
	monitorNS    string
	reportDir    string
	verbose      bool

	// Check flags
	statsFile     string
	prometheusURL string
	checkWindow   time.Duration

	// History flags
	historyScenario string
	historyLimit    int

	// Global config
	cfg   *config.Config
	store storage.Store
)

func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

func main() {
	config.LoadEnv()
	cfg = config.NewConfig()

	rootCmd := &cobra.Command{
		Use:   "load-run",
		Short: "Shaped HTTP load generator with threshold checks",
		Long: `load-run drives shaped HTTP traffic (ramp-up/hold/decay or
baseline/spike/recovery) against a target service, records latency and
failure stats per endpoint, and checks them against the scenario's
thresholds. Failed runs exit non-zero so pipelines can gate on them.`,
		Run: runLoad,
	}

	rootCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Scenario YAML file (required)")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "Override the scenario's base URL")
	rootCmd.Flags().StringVarP(&profileName, "profile", "p", "", "Override the scenario's profile (smoke, baseline, stress, spike, soak)")
	rootCmd.Flags().IntVar(&peakUsers, "peak-users", 0, "Override the shape's peak concurrent users")
	rootCmd.Flags().Float64Var(&spawnRate, "spawn-rate", 0, "Override the shape's spawn rate (users per second)")
	rootCmd.Flags().DurationVar(&maxDuration, "max-duration", 0, "Hard cap on run time regardless of shape (0 = no cap)")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json")
	rootCmd.Flags().BoolVar(&saveResults, "save", false, "Save the run to the history database")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the scenario and print the plan without sending traffic")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "Suppress per-tick progress output")
	rootCmd.Flags().BoolVar(&force, "force", false, "Run even when the target classifies as production")
	rootCmd.Flags().StringVar(&monitorNS, "monitor-namespace", "", "Kubernetes namespace of the target to sample during the run")
	rootCmd.Flags().StringVar(&reportDir, "report-dir", "", "Directory for report artifacts (default REPORT_DIR or ./reports)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check observed stats against a scenario's thresholds",
		Long: `check evaluates stats from a previous run (--stats-file) or from
Prometheus (--prometheus-url) against the scenario's thresholds without
generating any load. Violations print in threshold order and the command
exits 1 when any exist.`,
		Run: runCheck,
	}
	checkCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Scenario YAML file (required)")
	checkCmd.Flags().StringVar(&statsFile, "stats-file", "", "Stats JSON file written by a previous run")
	checkCmd.Flags().StringVar(&prometheusURL, "prometheus-url", "", "Prometheus base URL (default PROMETHEUS_URL)")
	checkCmd.Flags().DurationVar(&checkWindow, "window", 0, "Lookback window for Prometheus stats (default CHECK_WINDOW_MINUTES)")
	checkCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "View stored runs and the p95 trend",
		Run:   runHistory,
	}
	historyCmd.Flags().StringVar(&historyScenario, "scenario", "", "Filter runs by scenario name")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to show")
	historyCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json")
	historyCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	auditCmd := &cobra.Command{
		Use:   "audit <run-id>",
		Short: "View a stored run's violations and how to rerun it",
		Args:  cobra.ExactArgs(1),
		Run:   runAudit,
	}
	auditCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Scenario file to mention in the rerun hint")
	auditCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json")
	auditCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(auditCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}

func initStorage() error {
	if !cfg.StoreResults {
		logVerbose("Result storage disabled by config")
		return fmt.Errorf("result storage is disabled")
	}
	return initStorageForced()
}

func initStorageForced() error {
	s, err := storage.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}
	store = s
	logVerbose("Connected to PostgreSQL storage")
	return nil
}

func runLoad(cmd *cobra.Command, args []string) {
	if scenarioPath == "" {
		fmt.Println("Error: --scenario is required")
		os.Exit(2)
	}

	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	// Flag overrides rerun a stored scenario against another target or at
	// another size. Re-validate afterwards so overrides cannot sneak past
	// the profile caps.
	overridden := false
	if baseURL != "" {
		sc.BaseURL = baseURL
		overridden = true
	}
	if profileName != "" {
		sc.Profile = scenario.Profile(profileName)
		overridden = true
	}
	if peakUsers > 0 {
		sc.Shape.PeakUsers = peakUsers
		overridden = true
	}
	if spawnRate > 0 {
		sc.Shape.SpawnRate = spawnRate
		overridden = true
	}
	if overridden {
		if err := sc.Validate(); err != nil {
			fmt.Printf("Error: invalid scenario after overrides: %v\n", err)
			os.Exit(2)
		}
	}

	if os.Getenv("CI") == "true" {
		logVerbose("CI environment detected, applying CI preset")
		cfg.UseCIPreset()
	}
	switch sc.Profile {
	case scenario.ProfileSmoke:
		cfg.UseSmokePreset()
	case scenario.ProfileSoak:
		cfg.UseSoakPreset()
	}
	cfg.OutputFormat = outputFormat
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: invalid configuration: %v\n", err)
		os.Exit(2)
	}

	handler, err := output.NewHandler(outputFormat, os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	guardTarget(sc.BaseURL)

	if dryRun {
		printPlan(sc)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if maxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxDuration)
		defer cancel()
	}

	// The in-cluster pod monitor is optional: a missing kubeconfig degrades
	// to a run without pod stats, but an explicitly named namespace that
	// classifies as production still refuses to run.
	var mon *monitor.Monitor
	if monitorNS != "" {
		mon, err = monitor.New(monitorNS, cfg.MonitorInterval)
		if err != nil {
			fmt.Printf("[WARN] Pod monitor unavailable: %v\n", err)
			mon = nil
		} else {
			env := mon.ClassifyTarget(ctx)
			envCfg := monitor.GetEnvironmentConfig(env)
			logVerbose("Namespace %s classified as %s (%s)", monitorNS, env, envCfg.Description)
			if !envCfg.AllowLoadTest {
				if !force {
					fmt.Printf("Error: namespace %s classifies as %s; rerun with --force to load-test it\n", monitorNS, env)
					os.Exit(2)
				}
				fmt.Printf("[WARN] Forcing load test against %s namespace %s\n", env, monitorNS)
			}
		}
	}

	runID := uuid.New().String()
	layout, err := artifacts.EnsureLayout(cfg.LogDir, effectiveReportDir())
	if err != nil {
		fmt.Printf("Error: failed to prepare artifact directories: %v\n", err)
		os.Exit(2)
	}

	logName := artifacts.LogFileName(sc.Name, runID, cfg.WorkerID)
	logFile, logger, err := logging.NewRunLogger(cfg.LogLevel, layout.LogDir, logName)
	if err != nil {
		fmt.Printf("[WARN] Run log unavailable, continuing without: %v\n", err)
		logger = logging.NewNopLogger()
	}
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	run, err := runner.New(sc, runner.Options{
		RunID:              runID,
		TickInterval:       cfg.TickInterval,
		Timeout:            cfg.RequestTimeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		MetricsPort:        cfg.MetricsPort,
		Headless:           headless,
		Logger:             logger,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("[INFO] HTTP Load Runner - run %s\n", runID)
	fmt.Printf("[INFO] Scenario: %s (profile %s)\n", sc.Name, sc.Profile)
	fmt.Printf("[INFO] Target: %s\n", sc.BaseURL)
	fmt.Printf("[INFO] Shape: %s, %d peak users, %.1f users/s spawn rate\n",
		sc.Shape.Type, sc.Shape.PeakUsers, sc.Shape.SpawnRate)
	if cfg.MetricsPort > 0 {
		logVerbose("Prometheus scrape endpoint on :%d/metrics", cfg.MetricsPort)
	}

	monCancel := func() {}
	if mon != nil {
		var monCtx context.Context
		monCtx, monCancel = context.WithCancel(ctx)
		go mon.Run(monCtx)
		fmt.Printf("[INFO] Sampling pods in namespace %s every %s\n", monitorNS, cfg.MonitorInterval)
	}

	result, err := run.Run(ctx)
	monCancel()
	if err != nil {
		fmt.Printf("Error: run failed: %v\n", err)
		os.Exit(2)
	}
	if mon != nil {
		result.PodSummaries = mon.Summarize()
	}

	// Profiles cap what gets persisted: smoke runs are noise in history.
	profCfg := scenario.GetProfileConfig(sc.Profile)
	if saveResults && !profCfg.StoreEnabled {
		fmt.Printf("[INFO] Profile %s runs are not stored, skipping save\n", sc.Profile)
		saveResults = false
	}
	if saveResults {
		if err := initStorage(); err != nil {
			fmt.Printf("[WARN] Results will not be saved: %v\n", err)
		} else {
			record := converter.ResultToRecord(result)
			// Not the run ctx: an aborted run's partial record still saves.
			if err := store.SaveRun(context.Background(), record); err != nil {
				fmt.Printf("[WARN] Failed to save run: %v\n", err)
			} else {
				fmt.Printf("[INFO] Saved run %s to history\n", record.ID)
			}
			store.Close()
		}
	}

	rep := report.Build(result)
	files, err := report.WriteFiles(rep, result.Observed, layout.ReportDir)
	if err != nil {
		fmt.Printf("[WARN] Failed to write report artifacts: %v\n", err)
	} else {
		for _, f := range files {
			fmt.Printf("[INFO] Report written: %s\n", f)
		}
	}

	advice := advisor.New().Advise(result, sc.BuildSpec())
	if err := handler.DisplayRun(context.Background(), result, advice); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	if logFile != nil {
		logFile.Close()
	}
	if !result.Passed() {
		if logFile != nil {
			logPath := filepath.Join(layout.LogDir, logName)
			if dest, err := artifacts.PreserveFailedRunLog(logPath, layout.FailedDir); err == nil {
				fmt.Printf("[INFO] Run log preserved: %s\n", dest)
			}
		}
		os.Exit(1)
	}
}

// guardTarget refuses production-looking hostnames unless --force is set.
// Namespace classification catches labeled clusters; this catches the
// common case of pointing a scenario at the wrong URL.
func guardTarget(rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return
	}
	env := monitor.DetectEnvironmentFromName(u.Hostname())
	if env != monitor.EnvironmentProduction {
		return
	}
	if !force {
		fmt.Printf("Error: %s classifies as production; rerun with --force to load-test it\n", u.Hostname())
		os.Exit(2)
	}
	fmt.Printf("[WARN] Forcing load test against production host %s\n", u.Hostname())
}

func effectiveReportDir() string {
	if reportDir != "" {
		return reportDir
	}
	return cfg.ReportDir
}

func printPlan(sc *scenario.Scenario) {
	shp, err := sc.BuildShape()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	fmt.Println("[INFO] Dry run: no traffic will be sent")
	fmt.Printf("[INFO] Scenario: %s (profile %s)\n", sc.Name, sc.Profile)
	fmt.Printf("[INFO] Target: %s\n", sc.BaseURL)
	fmt.Printf("[INFO] Shape: %s, %d peak users, total %s\n",
		shp.Name(), sc.Shape.PeakUsers, shp.TotalDuration())

	fmt.Println("[INFO] Phases:")
	for i, p := range shp.Phases() {
		fmt.Printf("   %d. %s: %s - %s\n", i+1, p.Name, p.Start, p.End)
	}

	fmt.Printf("[INFO] Endpoints (%d):\n", len(sc.Endpoints))
	for i, ep := range sc.Endpoints {
		fmt.Printf("   %d. %s %s %s (weight %d)\n", i+1, ep.Name, ep.Method, ep.Path, ep.Weight)
	}

	spec := sc.BuildSpec()
	fmt.Println("[INFO] Thresholds:")
	for _, el := range spec {
		for _, lim := range el.Limits {
			fmt.Printf("   %s: %s <= %.2f\n", el.Endpoint, lim.Metric, lim.Max)
		}
	}
}

func runCheck(cmd *cobra.Command, args []string) {
	if scenarioPath == "" {
		fmt.Println("Error: --scenario is required")
		os.Exit(2)
	}

	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()
	window := checkWindow
	if window <= 0 {
		window = cfg.CheckWindow
	}

	var source datasource.DataSource
	if statsFile != "" {
		source = datasource.NewFileSource(statsFile)
	} else {
		promURL := prometheusURL
		if promURL == "" {
			promURL = cfg.PrometheusURL
		}
		ps, err := datasource.NewPrometheusSource(promURL)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(2)
		}
		source = ps
	}
	if !source.IsAvailable(ctx) {
		fmt.Printf("Error: stats source %s is not available\n", source.Name())
		os.Exit(2)
	}

	fmt.Printf("[INFO] Checking %s against %s stats (window %s)\n", sc.Name, source.Name(), window)

	observed, err := source.FetchStats(ctx, sc.EndpointNames(), window)
	if err != nil {
		fmt.Printf("Error: failed to fetch stats: %v\n", err)
		os.Exit(2)
	}

	violations := threshold.Check(observed, sc.BuildSpec())
	if len(violations) == 0 {
		fmt.Println("[INFO] All thresholds satisfied")
		return
	}

	fmt.Printf("[ERROR] %d threshold violation(s):\n", len(violations))
	for i, v := range violations {
		fmt.Printf("  %d. %s\n", i+1, v)
	}
	os.Exit(1)
}

func runHistory(cmd *cobra.Command, args []string) {
	if err := initStorageForced(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
	defer store.Close()

	ctx := context.Background()
	records, err := store.ListRuns(ctx, historyScenario, historyLimit)
	if err != nil {
		fmt.Printf("Error: failed to list runs: %v\n", err)
		os.Exit(2)
	}

	// The p95 trend mixes apples and oranges across scenarios, so it only
	// appears for a filtered listing.
	var trend *advisor.Trend
	if historyScenario != "" {
		t, err := advisor.AnalyzeTrend(records)
		if err != nil {
			logVerbose("Trend unavailable: %v", err)
		} else {
			trend = t
		}
	}

	handler, err := output.NewHandler(outputFormat, os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
	if err := handler.DisplayHistory(ctx, records, trend); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
}

func runAudit(cmd *cobra.Command, args []string) {
	runID := args[0]

	if err := initStorageForced(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
	defer store.Close()

	ctx := context.Background()
	record, err := store.GetRun(ctx, runID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	violations, err := store.GetRunViolations(ctx, runID)
	if err != nil {
		fmt.Printf("Error: failed to load violations: %v\n", err)
		os.Exit(2)
	}
	record.Violations = record.Violations[:0]
	for _, v := range violations {
		record.Violations = append(record.Violations, *v)
	}

	handler, err := output.NewHandler(outputFormat, os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
	if err := handler.DisplayViolations(ctx, record); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	if scenarioPath != "" && outputFormat != "json" {
		fmt.Printf("\nRerun: %s\n", converter.RerunCommand(record, scenarioPath))
	}
}
