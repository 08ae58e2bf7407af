package models

import (
	"slices"
	"time"

	"github.com/luxeval/luxeval/internal/accuracy"
	"github.com/luxeval/luxeval/internal/statistics"
)

// ComparisonOutcome is the complete result of one comparison run.
type ComparisonOutcome struct {
	RunID          string                    `json:"run_id"`
	Timestamp      time.Time                 `json:"timestamp"`
	Config         OutcomeConfig             `json:"config"`
	Baseline       string                    `json:"baseline"`
	Systems        []string                  `json:"systems"`
	Significance   []statistics.MetricResult `json:"significance"`
	Matrices       []accuracy.Matrix         `json:"accuracy_matrices"`
	SkippedMetrics []string                  `json:"skipped_metrics,omitempty"`
	// LowerIsBetter lists the metrics where a lower score wins.
	LowerIsBetter []string               `json:"lower_is_better,omitempty"`
	Legend        []accuracy.LegendEntry `json:"legend"`
}

// OutcomeConfig records the settings a comparison ran with.
type OutcomeConfig struct {
	Resamples       int     `json:"resamples"`
	Seed            int64   `json:"seed"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NoiseModel      string  `json:"noise_model"`
	Alpha           float64 `json:"alpha"`
}

// IsLowerBetter reports whether a lower score wins on metric.
func (o *ComparisonOutcome) IsLowerBetter(metric string) bool {
	return slices.Contains(o.LowerIsBetter, metric)
}

// better reports whether score a beats score b on metric.
func (o *ComparisonOutcome) better(metric string, a, b float64) bool {
	if o.IsLowerBetter(metric) {
		return a < b
	}
	return a > b
}

// Regression is a system that scores significantly worse than the baseline.
type Regression struct {
	Metric string   `json:"metric"`
	System string   `json:"system"`
	Delta  float64  `json:"delta"`
	PValue *float64 `json:"p_value"`
}

// Regressions lists every (metric, system) whose observed score is worse
// than the baseline's with a p-value under alpha. Delta is the raw score
// difference, so it is positive for a regression on a lower-is-better
// metric.
func (o *ComparisonOutcome) Regressions(alpha float64) []Regression {
	var out []Regression
	for _, mr := range o.Significance {
		if len(mr.Results) == 0 {
			continue
		}
		base := mr.Results[0]
		for _, r := range mr.Results[1:] {
			if r.Significant(alpha) && o.better(mr.Metric, base.Score, r.Score) {
				out = append(out, Regression{
					Metric: mr.Metric,
					System: r.System,
					Delta:  r.Score - base.Score,
					PValue: r.PValue,
				})
			}
		}
	}
	return out
}

// BestSystems returns, per metric, the systems sharing the best observed
// score: the highest, or the lowest on lower-is-better metrics.
func (o *ComparisonOutcome) BestSystems() map[string][]string {
	best := make(map[string][]string, len(o.Significance))
	for _, mr := range o.Significance {
		var top float64
		for i, r := range mr.Results {
			switch {
			case i == 0 || o.better(mr.Metric, r.Score, top):
				top = r.Score
				best[mr.Metric] = []string{r.System}
			case r.Score == top:
				best[mr.Metric] = append(best[mr.Metric], r.System)
			}
		}
	}
	return best
}

// Matrix returns the accuracy matrix for metric, if one was built.
func (o *ComparisonOutcome) Matrix(metric string) (accuracy.Matrix, bool) {
	for _, m := range o.Matrices {
		if m.Metric == metric {
			return m, true
		}
	}
	return accuracy.Matrix{}, false
}
