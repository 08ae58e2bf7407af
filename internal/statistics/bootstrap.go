package statistics

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Defaults for a paired bootstrap run.
const (
	DefaultResamples             = 1000
	DefaultSeed            int64 = 12345
	DefaultConfidenceLevel       = 0.95
)

var (
	// ErrValidation is returned for malformed engine input: fewer than two
	// systems, mismatched segment counts, empty or non-finite scores.
	ErrValidation = errors.New("invalid bootstrap input")

	// ErrDegenerate is returned when no meaningful estimate can be made,
	// e.g. zero segments or a bootstrap distribution without spread.
	ErrDegenerate = errors.New("degenerate bootstrap distribution")
)

// SystemScores is one system's segment-level scores for a single metric.
type SystemScores struct {
	Name   string    `json:"name"`
	Scores []float64 `json:"scores"`
}

// MetricSamples holds every system's scores for one metric.
// Systems[0] is the baseline.
type MetricSamples struct {
	Metric  string         `json:"metric"`
	Systems []SystemScores `json:"systems"`
}

// Result is the bootstrap estimate for one system on one metric.
type Result struct {
	System string  `json:"system"`
	Score  float64 `json:"score"`
	Mean   float64 `json:"mean"`
	CI     float64 `json:"ci"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	// PValue is nil for the baseline, which is never tested against itself.
	// A nil value does not mean the test failed.
	PValue *float64 `json:"p_value"`
}

// IsBaseline reports whether r is the baseline's result.
func (r Result) IsBaseline() bool {
	return r.PValue == nil
}

// Significant reports whether the difference to the baseline is significant
// at level alpha. Always false for the baseline.
func (r Result) Significant(alpha float64) bool {
	return r.PValue != nil && *r.PValue < alpha
}

// MetricResult lists the results for one metric, baseline first.
type MetricResult struct {
	Metric  string   `json:"metric"`
	Results []Result `json:"results"`
}

// Options configures PairedBootstrap.
type Options struct {
	Resamples       int
	Seed            int64
	ConfidenceLevel float64
	// Workers bounds how many metrics are evaluated concurrently.
	Workers int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Resamples:       DefaultResamples,
		Seed:            DefaultSeed,
		ConfidenceLevel: DefaultConfidenceLevel,
		Workers:         1,
	}
}

func (o Options) validate() error {
	if o.Resamples < 1 {
		return fmt.Errorf("%w: resample count must be positive, got %d", ErrValidation, o.Resamples)
	}
	if !(o.ConfidenceLevel > 0 && o.ConfidenceLevel < 1) {
		return fmt.Errorf("%w: confidence level must be in (0, 1), got %v", ErrValidation, o.ConfidenceLevel)
	}
	return nil
}

// PairedBootstrap runs a paired bootstrap test for every metric in samples.
//
// Each metric gets one N×segments index matrix drawn with replacement; all of
// the metric's systems are resampled through the same matrix, so resample k
// always picks the same segments for the baseline and every candidate. All
// matrices come from a single generator seeded with opts.Seed and are drawn
// in input order before any metric is evaluated, which keeps the output
// identical regardless of opts.Workers.
func PairedBootstrap(samples []MetricSamples, opts Options) ([]MetricResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no metrics supplied", ErrValidation)
	}

	seen := make(map[string]bool, len(samples))
	for _, m := range samples {
		if seen[m.Metric] {
			return nil, fmt.Errorf("%w: metric %q supplied more than once", ErrValidation, m.Metric)
		}
		seen[m.Metric] = true
		if err := validateMetric(m); err != nil {
			return nil, err
		}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	indices := make([][]int, len(samples))
	for i, m := range samples {
		indices[i] = drawIndices(rng, opts.Resamples, len(m.Systems[0].Scores))
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]MetricResult, len(samples))
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range samples {
		g.Go(func() error {
			r, err := evaluateMetric(samples[i], indices[i], opts)
			if err != nil {
				return fmt.Errorf("metric %q: %w", samples[i].Metric, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func validateMetric(m MetricSamples) error {
	if len(m.Systems) < 2 {
		return fmt.Errorf("%w: metric %q needs at least 2 systems, got %d", ErrValidation, m.Metric, len(m.Systems))
	}
	size := len(m.Systems[0].Scores)
	if size == 0 {
		return fmt.Errorf("%w: %w: metric %q has no segments", ErrValidation, ErrDegenerate, m.Metric)
	}
	names := make(map[string]bool, len(m.Systems))
	for _, s := range m.Systems {
		if names[s.Name] {
			return fmt.Errorf("%w: metric %q lists system %q twice", ErrValidation, m.Metric, s.Name)
		}
		names[s.Name] = true
		if len(s.Scores) != size {
			return fmt.Errorf("%w: metric %q: system %q has %d segments, baseline has %d",
				ErrValidation, m.Metric, s.Name, len(s.Scores), size)
		}
		for j, v := range s.Scores {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: metric %q: system %q segment %d is not finite", ErrValidation, m.Metric, s.Name, j)
			}
		}
	}
	return nil
}

// drawIndices returns a row-major resamples×size matrix of segment indices.
func drawIndices(rng *rand.Rand, resamples, size int) []int {
	idx := make([]int, resamples*size)
	for i := range idx {
		idx[i] = rng.Intn(size)
	}
	return idx
}

func evaluateMetric(m MetricSamples, idx []int, opts Options) (MetricResult, error) {
	size := len(m.Systems[0].Scores)
	slog.Debug("Paired bootstrap",
		"metric", m.Metric,
		"systems", len(m.Systems),
		"segments", size,
		"resamples", opts.Resamples)

	out := MetricResult{Metric: m.Metric, Results: make([]Result, 0, len(m.Systems))}

	baseline := m.Systems[0]
	baseDist := resampledMeans(baseline.Scores, idx, size)
	baseResult, err := summarize(baseline, baseDist, opts.ConfidenceLevel)
	if err != nil {
		return MetricResult{}, err
	}
	out.Results = append(out.Results, baseResult)

	for _, sys := range m.Systems[1:] {
		dist := resampledMeans(sys.Scores, idx, size)
		r, err := summarize(sys, dist, opts.ConfidenceLevel)
		if err != nil {
			return MetricResult{}, err
		}
		p := pValue(baseDist, dist, math.Abs(baseResult.Score-r.Score))
		r.PValue = &p
		out.Results = append(out.Results, r)
	}
	return out, nil
}

// resampledMeans computes the corpus score of every resample in idx.
func resampledMeans(scores []float64, idx []int, size int) []float64 {
	n := len(idx) / size
	means := make([]float64, n)
	for k := 0; k < n; k++ {
		sum := 0.0
		for _, j := range idx[k*size : (k+1)*size] {
			sum += scores[j]
		}
		means[k] = sum / float64(size)
	}
	return means
}

func summarize(sys SystemScores, dist []float64, level float64) (Result, error) {
	if zeroSpread(dist) {
		return Result{}, fmt.Errorf("%w: system %q has identical scores in every resample", ErrDegenerate, sys.Name)
	}
	ci := PercentileInterval(dist, level)
	return Result{
		System: sys.Name,
		Score:  mean(sys.Scores),
		Mean:   ci.Mean,
		CI:     (ci.Upper - ci.Lower) / 2,
		Lower:  ci.Lower,
		Upper:  ci.Upper,
	}, nil
}

// pValue returns the share of resamples whose bias-corrected absolute gap
// between system and baseline is at least the observed gap.
func pValue(baseDist, sysDist []float64, observed float64) float64 {
	diffs := make([]float64, len(sysDist))
	for k := range sysDist {
		diffs[k] = math.Abs(sysDist[k] - baseDist[k])
	}
	bias := mean(diffs)
	count := 0
	for _, d := range diffs {
		if d-bias >= observed {
			count++
		}
	}
	return float64(count) / float64(len(diffs))
}

func zeroSpread(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// ConfidenceInterval is a percentile interval over a bootstrap distribution.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// PercentileInterval computes the central interval of dist at the given
// confidence level, e.g. the 2.5th and 97.5th percentiles for 0.95.
// Percentiles interpolate linearly between order statistics. dist is not
// modified.
func PercentileInterval(dist []float64, confidenceLevel float64) ConfidenceInterval {
	ci := ConfidenceInterval{
		Mean:            mean(dist),
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   len(dist),
	}
	if len(dist) == 0 {
		return ci
	}

	sorted := make([]float64, len(dist))
	copy(sorted, dist)
	sort.Float64s(sorted)

	alpha := 1.0 - confidenceLevel
	ci.Lower = percentile(sorted, alpha/2)
	ci.Upper = percentile(sorted, 1-alpha/2)
	return ci
}

// percentile expects sorted input and q in [0, 1].
func percentile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
