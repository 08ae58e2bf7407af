// Package accuracy builds pairwise accuracy matrices: for every metric and
// every ordered pair of systems, the signed score difference and the
// probability that it reflects a real ranking.
package accuracy

import (
	"errors"
	"fmt"
	"math"

	"github.com/luxeval/luxeval/internal/statistics"
	"github.com/luxeval/luxeval/internal/thresholds"
)

// ErrInvalidTable is returned for score tables that cannot be compared.
var ErrInvalidTable = errors.New("invalid score table")

// ScoreTable holds aggregate scores in system × metric layout.
type ScoreTable struct {
	Systems []string `json:"systems"`
	Metrics []string `json:"metrics"`
	// Scores[i][m] is Systems[i]'s score on Metrics[m].
	Scores [][]float64 `json:"scores"`
}

func (t ScoreTable) validate() error {
	if len(t.Systems) < 2 {
		return fmt.Errorf("%w: need at least 2 systems, got %d", ErrInvalidTable, len(t.Systems))
	}
	if len(t.Metrics) == 0 {
		return fmt.Errorf("%w: no metrics", ErrInvalidTable)
	}
	if len(t.Scores) != len(t.Systems) {
		return fmt.Errorf("%w: %d score rows for %d systems", ErrInvalidTable, len(t.Scores), len(t.Systems))
	}
	seen := make(map[string]bool, len(t.Systems))
	for i, name := range t.Systems {
		if seen[name] {
			return fmt.Errorf("%w: duplicate system %q", ErrInvalidTable, name)
		}
		seen[name] = true
		if len(t.Scores[i]) != len(t.Metrics) {
			return fmt.Errorf("%w: system %q has %d scores for %d metrics", ErrInvalidTable, name, len(t.Scores[i]), len(t.Metrics))
		}
		for m, v := range t.Scores[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: system %q score on %q is not finite", ErrInvalidTable, name, t.Metrics[m])
			}
		}
	}
	return nil
}

// Cell compares Row against Col on one metric.
type Cell struct {
	Metric   string `json:"metric"`
	Row      string `json:"row"`
	Col      string `json:"col"`
	RowIndex int    `json:"row_index"`
	ColIndex int    `json:"col_index"`
	// Diff is score(Row) − score(Col); swapping Row and Col negates it.
	Diff        float64 `json:"diff"`
	Probability float64 `json:"probability"`
	Band        Band    `json:"band"`
}

// Matrix holds the off-diagonal cells of one metric in row-major order.
type Matrix struct {
	Metric  string   `json:"metric"`
	Systems []string `json:"systems"`
	Cells   []Cell   `json:"cells"`
}

// Cell returns the cell comparing row against col. The diagonal is never
// present.
func (m Matrix) Cell(row, col string) (Cell, bool) {
	for _, c := range m.Cells {
		if c.Row == row && c.Col == col {
			return c, true
		}
	}
	return Cell{}, false
}

// Builder turns score tables into accuracy matrices through a NoiseModel.
type Builder struct {
	model thresholds.NoiseModel
}

// NewBuilder returns a Builder using model.
func NewBuilder(model thresholds.NoiseModel) *Builder {
	return &Builder{model: model}
}

// Build returns one Matrix per metric, in table order. For N systems each
// matrix has N·(N−1) cells. A metric the model has no calibration for fails
// the whole build with the model's error.
func (b *Builder) Build(t ScoreTable) ([]Matrix, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	out := make([]Matrix, 0, len(t.Metrics))
	for m, metric := range t.Metrics {
		mx := Matrix{
			Metric:  metric,
			Systems: append([]string(nil), t.Systems...),
			Cells:   make([]Cell, 0, len(t.Systems)*(len(t.Systems)-1)),
		}
		for i, row := range t.Systems {
			for j, col := range t.Systems {
				if i == j {
					continue
				}
				diff := t.Scores[i][m] - t.Scores[j][m]
				acc, err := b.model.Accuracy(diff, metric)
				if err != nil {
					return nil, fmt.Errorf("metric %q: %w", metric, err)
				}
				if math.IsNaN(acc) || acc < 0 || acc > 100 {
					return nil, fmt.Errorf("metric %q: noise model returned %v for diff %v, want [0, 100]", metric, acc, diff)
				}
				p := acc / 100
				mx.Cells = append(mx.Cells, Cell{
					Metric:      metric,
					Row:         row,
					Col:         col,
					RowIndex:    i,
					ColIndex:    j,
					Diff:        diff,
					Probability: p,
					Band:        Classify(p),
				})
			}
		}
		out = append(out, mx)
	}
	return out, nil
}

// TableFromResults builds a ScoreTable from bootstrap results using each
// system's observed score. All metrics must list the same systems in the
// same order.
func TableFromResults(results []statistics.MetricResult) (ScoreTable, error) {
	if len(results) == 0 {
		return ScoreTable{}, fmt.Errorf("%w: no results", ErrInvalidTable)
	}
	t := ScoreTable{}
	for _, r := range results[0].Results {
		t.Systems = append(t.Systems, r.System)
	}
	t.Scores = make([][]float64, len(t.Systems))
	for _, mr := range results {
		if len(mr.Results) != len(t.Systems) {
			return ScoreTable{}, fmt.Errorf("%w: metric %q has %d systems, want %d", ErrInvalidTable, mr.Metric, len(mr.Results), len(t.Systems))
		}
		t.Metrics = append(t.Metrics, mr.Metric)
		for i, r := range mr.Results {
			if r.System != t.Systems[i] {
				return ScoreTable{}, fmt.Errorf("%w: metric %q lists %q where %q was expected", ErrInvalidTable, mr.Metric, r.System, t.Systems[i])
			}
			t.Scores[i] = append(t.Scores[i], r.Score)
		}
	}
	return t, nil
}

// Select returns a copy of t restricted to the metrics keep accepts, along
// with the names of the metrics it dropped.
func (t ScoreTable) Select(keep func(metric string) bool) (ScoreTable, []string) {
	out := ScoreTable{
		Systems: append([]string(nil), t.Systems...),
		Scores:  make([][]float64, len(t.Scores)),
	}
	var dropped []string
	for m, metric := range t.Metrics {
		if !keep(metric) {
			dropped = append(dropped, metric)
			continue
		}
		out.Metrics = append(out.Metrics, metric)
		for i := range t.Scores {
			out.Scores[i] = append(out.Scores[i], t.Scores[i][m])
		}
	}
	return out, dropped
}
