package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/luxeval/luxeval/internal/cache"
	"github.com/luxeval/luxeval/internal/models"
	"github.com/luxeval/luxeval/internal/orchestration"
	"github.com/luxeval/luxeval/internal/projectconfig"
	"github.com/luxeval/luxeval/internal/reporting"
	"github.com/luxeval/luxeval/internal/spinner"
	"github.com/luxeval/luxeval/internal/statistics"
	"github.com/luxeval/luxeval/internal/thresholds"
	"github.com/spf13/cobra"
)

var (
	compareFormat           string
	compareResamples        int
	compareSeed             int64
	compareConfidence       float64
	compareWorkers          int
	compareThresholdsFile   string
	compareNoiseModel       string
	compareAlpha            float64
	compareMetrics          []string
	compareLowerIsBetter    []string
	compareSkipUnknown      bool
	compareFailOnRegression bool
	compareOutput           string
	enableCache             bool
	disableCache            bool
	compareCacheDir         string
)

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <scores.yaml>",
		Short: "Compare systems against a baseline",
		Long: `Compare the systems of a score document against its baseline.

Runs a paired bootstrap test per metric, reporting each system's score with
its confidence interval and p-value, then builds an accuracy matrix per
metric from the threshold profile. Flags override .luxeval.yaml, which
overrides the built-in defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: compareCommandE,
	}

	cmd.Flags().StringVarP(&compareFormat, "format", "f", projectconfig.DefaultFormat, "Output format: table, json, markdown, html or junit")
	cmd.Flags().IntVarP(&compareResamples, "resamples", "n", projectconfig.DefaultResamples, "Number of bootstrap resamples")
	cmd.Flags().Int64Var(&compareSeed, "seed", projectconfig.DefaultSeed, "Random seed for resampling")
	cmd.Flags().Float64Var(&compareConfidence, "confidence", projectconfig.DefaultConfidence, "Confidence level of the reported intervals")
	cmd.Flags().IntVar(&compareWorkers, "workers", projectconfig.DefaultWorkers, "Metrics evaluated concurrently")
	cmd.Flags().StringVar(&compareThresholdsFile, "thresholds", "", "Threshold profile file (YAML or JSON); defaults to the built-in profile")
	cmd.Flags().StringVar(&compareNoiseModel, "noise-model", projectconfig.DefaultNoiseModel, "Noise model: normal-cdf or ceiling")
	cmd.Flags().Float64Var(&compareAlpha, "alpha", projectconfig.DefaultAlpha, "Significance level for p-value markers")
	cmd.Flags().StringSliceVarP(&compareMetrics, "metric", "m", nil, "Only compare metrics matching these glob patterns")
	cmd.Flags().StringSliceVar(&compareLowerIsBetter, "lower-is-better", nil, "Glob patterns of metrics where a lower score wins (ter and metricx-* always are)")
	cmd.Flags().BoolVar(&compareSkipUnknown, "skip-unknown", false, "Skip accuracy matrices for metrics without a calibration instead of failing")
	cmd.Flags().BoolVar(&compareFailOnRegression, "fail-on-regression", false, "Exit with code 1 when a system is significantly worse than the baseline")
	cmd.Flags().StringVarP(&compareOutput, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&enableCache, "cache", false, "Enable outcome caching (default: false)")
	cmd.Flags().BoolVar(&disableCache, "no-cache", false, "Disable outcome caching, overriding .luxeval.yaml")
	cmd.Flags().StringVar(&compareCacheDir, "cache-dir", projectconfig.DefaultCacheDir, "Cache directory for storing outcomes")

	return cmd
}

func compareCommandE(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := projectconfig.Load(wd)
	if err != nil {
		return err
	}
	applyCompareFlags(cmd, cfg)

	format, err := reporting.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}

	profile, err := loadProfile(cfg.Thresholds.File)
	if err != nil {
		return err
	}
	model, err := thresholds.New(thresholds.Kind(cfg.Thresholds.NoiseModel.Kind), profile, cfg.Thresholds.NoiseModel.Params)
	if err != nil {
		return err
	}

	doc, err := models.LoadScores(args[0])
	if err != nil {
		return err
	}

	opts := []orchestration.ComparerOption{
		orchestration.WithBootstrapOptions(statistics.Options{
			Resamples:       cfg.Bootstrap.Resamples,
			Seed:            cfg.SeedValue(),
			ConfidenceLevel: cfg.Bootstrap.ConfidenceLevel,
			Workers:         cfg.Bootstrap.Workers,
		}),
		orchestration.WithNoiseModel(cfg.Thresholds.NoiseModel.Kind, model),
		orchestration.WithAlpha(cfg.Report.Alpha),
		orchestration.WithMetricFilters(compareMetrics...),
		orchestration.WithLowerIsBetter(cfg.Report.LowerIsBetter...),
		orchestration.WithSkipUnknown(compareSkipUnknown),
	}

	if cfg.Cache.Enabled && !disableCache {
		absCacheDir, err := filepath.Abs(cfg.Cache.Dir)
		if err != nil {
			return fmt.Errorf("resolving cache directory: %w", err)
		}
		slog.Debug("Cache enabled", "dir", absCacheDir)
		opts = append(opts, orchestration.WithCache(cache.New(absCacheDir),
			profileRows(profile), cfg.Thresholds.NoiseModel.Params))
	}

	stop := spinner.StartOnTerminal(os.Stderr, "Running paired bootstrap...")
	outcome, err := orchestration.NewComparer(opts...).Compare(cmd.Context(), doc)
	stop()
	if err != nil {
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), outcome, format, cfg.Report.Alpha); err != nil {
		return err
	}

	if compareFailOnRegression {
		if regs := outcome.Regressions(cfg.Report.Alpha); len(regs) > 0 {
			for _, r := range regs {
				slog.Info("Significant regression", "metric", r.Metric, "system", r.System, "delta", r.Delta, "p_value", *r.PValue)
			}
			return &RegressionError{
				Message: fmt.Sprintf("%d significant regression(s) against baseline %q at alpha %g", len(regs), outcome.Baseline, cfg.Report.Alpha),
			}
		}
	}
	return nil
}

// applyCompareFlags overlays explicitly set flags onto cfg.
func applyCompareFlags(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Report.Format = compareFormat
	}
	if flags.Changed("resamples") {
		cfg.Bootstrap.Resamples = compareResamples
	}
	if flags.Changed("seed") {
		seed := compareSeed
		cfg.Bootstrap.Seed = &seed
	}
	if flags.Changed("confidence") {
		cfg.Bootstrap.ConfidenceLevel = compareConfidence
	}
	if flags.Changed("workers") {
		cfg.Bootstrap.Workers = compareWorkers
	}
	if flags.Changed("thresholds") {
		cfg.Thresholds.File = compareThresholdsFile
	}
	if flags.Changed("noise-model") {
		cfg.Thresholds.NoiseModel.Kind = compareNoiseModel
	}
	if flags.Changed("alpha") {
		cfg.Report.Alpha = compareAlpha
	}
	if flags.Changed("lower-is-better") {
		cfg.Report.LowerIsBetter = compareLowerIsBetter
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled = enableCache
	}
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir = compareCacheDir
	}
}

// loadProfile returns the threshold profile at file, or the built-in
// profile when file is empty.
func loadProfile(file string) (*thresholds.Profile, error) {
	if file == "" {
		return thresholds.Default(), nil
	}
	return thresholds.LoadFile(file)
}

func writeReport(stdout io.Writer, outcome *models.ComparisonOutcome, format reporting.Format, alpha float64) error {
	if compareOutput == "" {
		return reporting.Write(stdout, outcome, format, alpha)
	}

	f, err := os.Create(compareOutput)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := reporting.Write(f, outcome, format, alpha); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", compareOutput, err)
	}
	slog.Debug("Wrote report", "path", compareOutput, "format", format)
	return nil
}
