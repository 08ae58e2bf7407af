// Package orchestration runs a full comparison: paired bootstrap
// significance over segment scores, then accuracy matrices over corpus
// scores.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/luxeval/luxeval/internal/accuracy"
	"github.com/luxeval/luxeval/internal/cache"
	"github.com/luxeval/luxeval/internal/models"
	"github.com/luxeval/luxeval/internal/statistics"
	"github.com/luxeval/luxeval/internal/thresholds"
)

// DefaultAlpha is the significance level used when none is configured.
const DefaultAlpha = 0.05

// ErrNoMetrics is returned when metric filtering leaves nothing to compare.
var ErrNoMetrics = errors.New("no metrics to compare")

// Comparer orchestrates one comparison run.
type Comparer struct {
	bootstrap statistics.Options

	model     thresholds.NoiseModel
	modelKind string

	alpha float64

	// Metric filtering
	metricFilters []string

	// Drop metrics the noise model cannot calibrate instead of failing.
	skipUnknown bool

	// Glob patterns of metrics where a lower score wins
	lowerIsBetter []string

	// Outcome caching
	cache     *cache.Cache
	cacheSalt []any

	now func() time.Time
}

// ComparerOption configures a Comparer.
type ComparerOption func(*Comparer)

// WithBootstrapOptions sets the resampling options.
func WithBootstrapOptions(opts statistics.Options) ComparerOption {
	return func(c *Comparer) {
		c.bootstrap = opts
	}
}

// WithNoiseModel sets the model behind the accuracy matrices. kind is
// recorded in the outcome.
func WithNoiseModel(kind string, model thresholds.NoiseModel) ComparerOption {
	return func(c *Comparer) {
		c.modelKind = kind
		c.model = model
	}
}

// WithAlpha sets the significance level recorded in the outcome.
func WithAlpha(alpha float64) ComparerOption {
	return func(c *Comparer) {
		c.alpha = alpha
	}
}

// WithMetricFilters restricts the run to metrics matching the glob patterns.
func WithMetricFilters(patterns ...string) ComparerOption {
	return func(c *Comparer) {
		c.metricFilters = patterns
	}
}

// WithSkipUnknown makes metrics without a calibration skip their matrix
// instead of failing the run.
func WithSkipUnknown(skip bool) ComparerOption {
	return func(c *Comparer) {
		c.skipUnknown = skip
	}
}

// WithLowerIsBetter adds glob patterns of metrics where a lower score wins.
// models.DefaultLowerIsBetter always applies, as do the document's own
// patterns.
func WithLowerIsBetter(patterns ...string) ComparerOption {
	return func(c *Comparer) {
		c.lowerIsBetter = append(c.lowerIsBetter, patterns...)
	}
}

// WithCache reuses outcomes stored in c. The noise model cannot be hashed,
// so salt must identify it (profile contents, parameters).
func WithCache(c *cache.Cache, salt ...any) ComparerOption {
	return func(cmp *Comparer) {
		cmp.cache = c
		cmp.cacheSalt = salt
	}
}

// NewComparer returns a Comparer using the builtin threshold profile and
// the normal-CDF noise model unless options say otherwise.
func NewComparer(opts ...ComparerOption) *Comparer {
	c := &Comparer{
		bootstrap:     statistics.DefaultOptions(),
		model:         thresholds.NewNormalCDFModel(thresholds.Default()),
		modelKind:     string(thresholds.DefaultKind),
		alpha:         DefaultAlpha,
		lowerIsBetter: slices.Clone(models.DefaultLowerIsBetter),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare runs the comparison over doc, which must be normalized. doc is
// not modified.
func (c *Comparer) Compare(ctx context.Context, doc *models.ScoreDocument) (*models.ComparisonOutcome, error) {
	metrics, err := FilterMetrics(doc.Metrics, c.metricFilters)
	if err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, fmt.Errorf("%w: no metric matches %v", ErrNoMetrics, c.metricFilters)
	}
	view := *doc
	view.Metrics = metrics

	lowerIsBetter, err := models.ResolveLowerIsBetter(metrics, slices.Concat(c.lowerIsBetter, doc.LowerIsBetter))
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var key string
	if c.cache != nil {
		key, err = cache.CacheKey(&view, c.cacheKeyParts()...)
		if err != nil {
			return nil, fmt.Errorf("computing cache key: %w", err)
		}
		if cached, ok := c.cache.Get(key); ok {
			slog.Info("Using cached comparison", "run_id", cached.RunID, "key", key)
			return cached, nil
		}
	}

	slog.Debug("Starting comparison",
		"systems", len(view.Systems), "metrics", len(metrics),
		"resamples", c.bootstrap.Resamples, "seed", c.bootstrap.Seed)

	significance, err := statistics.PairedBootstrap(view.Samples(), c.bootstrap)
	if err != nil {
		return nil, fmt.Errorf("paired bootstrap: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table := view.Table()
	var skipped []string
	if c.skipUnknown {
		table, skipped = table.Select(c.calibrated)
		for _, m := range skipped {
			slog.Warn("No threshold calibration for metric, skipping accuracy matrix", "metric", m)
		}
	}

	var matrices []accuracy.Matrix
	if len(table.Metrics) > 0 {
		matrices, err = accuracy.NewBuilder(c.model).Build(table)
		if err != nil {
			return nil, fmt.Errorf("accuracy matrix: %w", err)
		}
	}

	outcome := &models.ComparisonOutcome{
		RunID:     uuid.NewString(),
		Timestamp: c.now().UTC(),
		Config: models.OutcomeConfig{
			Resamples:       c.bootstrap.Resamples,
			Seed:            c.bootstrap.Seed,
			ConfidenceLevel: c.bootstrap.ConfidenceLevel,
			NoiseModel:      c.modelKind,
			Alpha:           c.alpha,
		},
		Baseline:       view.Baseline,
		Systems:        view.SystemNames(),
		Significance:   significance,
		Matrices:       matrices,
		SkippedMetrics: skipped,
		LowerIsBetter:  lowerIsBetter,
		Legend:         accuracy.Legend(),
	}

	if c.cache != nil {
		if err := c.cache.Put(key, outcome); err != nil {
			slog.Warn("Failed to cache comparison", "error", err)
		}
	}
	return outcome, nil
}

// cacheKeyParts lists everything besides the document that shapes the
// outcome. Workers is left out since it never changes results.
func (c *Comparer) cacheKeyParts() []any {
	settings := struct {
		Resamples       int      `json:"resamples"`
		Seed            int64    `json:"seed"`
		ConfidenceLevel float64  `json:"confidence_level"`
		NoiseModel      string   `json:"noise_model"`
		Alpha           float64  `json:"alpha"`
		SkipUnknown     bool     `json:"skip_unknown"`
		LowerIsBetter   []string `json:"lower_is_better"`
	}{
		Resamples:       c.bootstrap.Resamples,
		Seed:            c.bootstrap.Seed,
		ConfidenceLevel: c.bootstrap.ConfidenceLevel,
		NoiseModel:      c.modelKind,
		Alpha:           c.alpha,
		SkipUnknown:     c.skipUnknown,
		LowerIsBetter:   c.lowerIsBetter,
	}
	return append([]any{settings}, c.cacheSalt...)
}

// calibrated reports whether the noise model knows metric. Errors other
// than an unknown metric are left for Build to surface.
func (c *Comparer) calibrated(metric string) bool {
	_, err := c.model.Accuracy(0, metric)
	return !errors.Is(err, thresholds.ErrUnknownMetric)
}
