package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/review-analyzer/internal/classify"
	"github.com/jonathan/review-analyzer/internal/config"
	"github.com/jonathan/review-analyzer/internal/export"
	"github.com/jonathan/review-analyzer/internal/observability"
	"github.com/jonathan/review-analyzer/internal/progress"
	"github.com/jonathan/review-analyzer/internal/ratelimit"
	"github.com/jonathan/review-analyzer/internal/records"
	"github.com/jonathan/review-analyzer/internal/scheduler"
	"github.com/jonathan/review-analyzer/internal/types"
)

// Report artifact names inside the output directory.
const (
	reportCSVName   = "classified_reviews.csv"
	reportStatsName = "analysis_data.json"
)

var analyzeCommand = &cobra.Command{
	Use:   "analyze",
	Short: "Classify reviews and write the report artifacts",
	Long: `Loads the reviews CSV, classifies each review into the category taxonomy
via the Gemini API, and writes the per-review report plus aggregate statistics.

Progress is saved to a durable file as classification proceeds; an interrupted
run resumes from where it stopped. Configuration can be loaded from a JSON file
using --config. Command-line arguments override config file values.`,
	RunE: runAnalyzeCmd,
}

var (
	analyzeConfigPath   string
	analyzeInput        string
	analyzeOutputDir    string
	analyzeProgressFile string
	analyzeAPIKey       string
	analyzeModel        string
	analyzeWorkers      int
	analyzeMaxInFlight  int
	analyzeSpacingMS    int
	analyzeMaxAttempts  int
	analyzeSaveInterval int
	analyzeSampleSize   int
	analyzeSampleSeed   int64
	analyzeResume       string
	analyzeVerbose      bool
)

func init() {
	// Config file flag (processed first)
	analyzeCommand.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	analyzeCommand.Flags().StringVarP(&analyzeInput, "input", "i", "", "Path to the reviews CSV file")
	analyzeCommand.Flags().StringVarP(&analyzeOutputDir, "output-dir", "o", "", "Directory for report artifacts")
	analyzeCommand.Flags().StringVar(&analyzeProgressFile, "progress-file", "", "Path to the durable progress file")
	analyzeCommand.Flags().StringVar(&analyzeModel, "model", "", "Gemini model name")
	analyzeCommand.Flags().IntVarP(&analyzeWorkers, "workers", "w", 0, "Concurrent classification workers")
	analyzeCommand.Flags().IntVar(&analyzeMaxInFlight, "max-in-flight", 0, "Maximum concurrent provider calls (defaults to --workers)")
	analyzeCommand.Flags().IntVar(&analyzeSpacingMS, "request-spacing-ms", 0, "Minimum milliseconds between provider calls")
	analyzeCommand.Flags().IntVar(&analyzeMaxAttempts, "max-attempts", 0, "Attempts per review including the first")
	analyzeCommand.Flags().IntVar(&analyzeSaveInterval, "save-interval", 0, "Auto-save progress every N completed reviews")
	analyzeCommand.Flags().IntVar(&analyzeSampleSize, "sample-size", 0, "Classify a random subset of this size (0 = all)")
	analyzeCommand.Flags().Int64Var(&analyzeSampleSeed, "sample-seed", 0, "Seed for deterministic sampling")
	analyzeCommand.Flags().StringVar(&analyzeResume, "resume", "", "Resume policy when prior progress exists: continue, report or restart (prompts if unset)")
	analyzeCommand.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	analyzeCommand.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(analyzeCommand)
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := observability.NewPrinter(os.Stdout)
	start := time.Now()

	recStore, err := records.Load(cfg.Input)
	if err != nil {
		return fmt.Errorf("failed to load reviews: %w", err)
	}
	for _, w := range recStore.Warnings() {
		printer.Warningf("%s", w)
	}
	recs := recStore.Sample(cfg.SampleSize, cfg.SampleSeed)
	if len(recs) < recStore.Count() {
		printer.Infof("sampled %d of %d reviews (seed %d)", len(recs), recStore.Count(), cfg.SampleSeed)
	}

	progStore, err := progress.Open(cfg.ProgressFile, cfg.SaveInterval)
	if err != nil {
		var corrupt *progress.CorruptProgressError
		if !errors.As(err, &corrupt) {
			return err
		}
		printer.Warningf("%v; starting with empty progress", corrupt)
	}

	if size, seed := progStore.Sampling(); len(progStore.Snapshot().Results) > 0 &&
		(size != cfg.SampleSize || seed != cfg.SampleSeed) {
		printer.Warningf("saved progress used sample-size=%d sample-seed=%d but this run uses sample-size=%d sample-seed=%d; continue reconciles against a different subset",
			size, seed, cfg.SampleSize, cfg.SampleSeed)
	}

	policy, err := resolvePolicy(cfg, progStore, recs, printer)
	if err != nil {
		return err
	}

	pending, err := scheduler.Reconcile(recs, progStore, policy)
	if err != nil {
		return err
	}
	progStore.SetSampling(cfg.SampleSize, cfg.SampleSeed)

	var runErr error
	if len(pending) > 0 {
		printer.Infof("classifying %d of %d reviews with %d workers", len(pending), len(recs), cfg.Workers)
		runErr = classifyPending(ctx, cfg, progStore, printer, pending)
	} else if policy != scheduler.PolicyReportOnly {
		printer.Infof("nothing left to classify")
	}

	if err := writeReport(cfg, recs, progStore, printer, time.Since(start)); err != nil {
		return err
	}

	if errors.Is(runErr, context.Canceled) {
		printer.Infof("interrupted; progress saved to %s", progStore.Path())
		return nil
	}
	return runErr
}

// resolveConfig layers the config file, explicit flags and built-in defaults
// into the effective configuration.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if analyzeConfigPath != "" {
		loadedCfg, err := config.LoadConfig(analyzeConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if analyzeVerbose {
			fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", analyzeConfigPath)
		}
	}

	// Apply CLI overrides; only override if the flag was explicitly set
	if cmd.Flags().Changed("input") {
		cfg.Input = analyzeInput
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = analyzeOutputDir
	}
	if cmd.Flags().Changed("progress-file") {
		cfg.ProgressFile = analyzeProgressFile
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = analyzeAPIKey
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = analyzeModel
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = analyzeWorkers
	}
	if cmd.Flags().Changed("max-in-flight") {
		cfg.MaxInFlight = analyzeMaxInFlight
	}
	if cmd.Flags().Changed("request-spacing-ms") {
		cfg.RequestSpacingMS = analyzeSpacingMS
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.MaxAttempts = analyzeMaxAttempts
	}
	if cmd.Flags().Changed("save-interval") {
		cfg.SaveInterval = analyzeSaveInterval
	}
	if cmd.Flags().Changed("sample-size") {
		cfg.SampleSize = analyzeSampleSize
	}
	if cmd.Flags().Changed("sample-seed") {
		cfg.SampleSeed = analyzeSampleSeed
	}
	if cmd.Flags().Changed("resume") {
		cfg.Resume = analyzeResume
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = analyzeVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Baseline())
	if cfg.MaxInFlight == 0 {
		cfg.MaxInFlight = cfg.Workers
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if cfg.Input == "" {
		return cfg, fmt.Errorf("--input is required (via flag or config)")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	return cfg, nil
}

// resolvePolicy turns the configured resume policy, or an interactive
// prompt when none is configured, into the policy the scheduler applies.
// The prompt fires only when prior progress actually exists.
func resolvePolicy(cfg config.Config, progStore *progress.Store, recs []types.Record, printer *observability.Printer) (scheduler.Policy, error) {
	if cfg.Resume != "" {
		return scheduler.ParsePolicy(cfg.Resume)
	}

	snap := progStore.Snapshot()
	if len(snap.Results) == 0 {
		return scheduler.PolicyContinue, nil
	}

	remaining := 0
	terminal := snap.TerminalIDs()
	for _, rec := range recs {
		if !terminal[rec.ID] {
			remaining++
		}
	}
	printer.Infof("found saved progress: %d succeeded, %d failed, %d of %d remaining",
		snap.Counters.Succeeded, snap.Counters.Failed, remaining, len(recs))
	fmt.Print("Continue classification? [Y=continue / r=report only / n=restart]: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read resume choice: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return scheduler.PolicyContinue, nil
	case "r", "report":
		return scheduler.PolicyReportOnly, nil
	case "n", "no", "restart":
		return scheduler.PolicyRestart, nil
	}
	return "", fmt.Errorf("unrecognized choice %q", strings.TrimSpace(line))
}

// classifyPending wires the classifier, pacer and runner together and
// drives the pending records to completion.
func classifyPending(ctx context.Context, cfg config.Config, progStore *progress.Store, printer *observability.Printer, pending []types.Record) error {
	classifier, err := classify.NewGeminiClassifier(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return err
	}
	defer func() { _ = classifier.Close() }()

	pacer := ratelimit.NewPacer(time.Duration(cfg.RequestSpacingMS)*time.Millisecond, cfg.MaxInFlight)
	runner := scheduler.NewRunner(classifier, pacer, progStore, printer, scheduler.Options{
		Workers:     cfg.Workers,
		MaxAttempts: cfg.MaxAttempts,
	})
	return runner.Run(ctx, pending)
}

// writeReport merges the loaded records with the progress snapshot and
// writes both report artifacts. The report always covers every input
// record; reviews without an outcome appear as unclassified.
func writeReport(cfg config.Config, recs []types.Record, progStore *progress.Store, printer *observability.Printer, elapsed time.Duration) error {
	snap := progStore.Snapshot()
	rows := export.Merge(recs, snap)

	csvPath := filepath.Join(cfg.OutputDir, reportCSVName)
	if err := export.WriteCSV(csvPath, rows); err != nil {
		return err
	}
	statsPath := filepath.Join(cfg.OutputDir, reportStatsName)
	if err := export.WriteStats(statsPath, export.Compute(rows)); err != nil {
		return err
	}

	printer.Summary(snap, elapsed)
	printer.Infof("report written to %s and %s", csvPath, statsPath)
	return nil
}
