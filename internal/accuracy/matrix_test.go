package accuracy

import (
	"errors"
	"testing"

	"github.com/luxeval/luxeval/internal/statistics"
	"github.com/luxeval/luxeval/internal/thresholds"
	"github.com/luxeval/luxeval/internal/thresholds/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func threeByTwo() ScoreTable {
	return ScoreTable{
		Systems: []string{"A", "B", "C"},
		Metrics: []string{"bleu", "chrf"},
		Scores: [][]float64{
			{20.0, 55.0},
			{25.0, 54.5},
			{21.5, 61.0},
		},
	}
}

func TestBuild_Completeness(t *testing.T) {
	b := NewBuilder(thresholds.NewNormalCDFModel(thresholds.Default()))
	table := threeByTwo()

	matrices, err := b.Build(table)
	require.NoError(t, err)
	require.Len(t, matrices, 2)

	total := 0
	for mi, mx := range matrices {
		assert.Equal(t, table.Metrics[mi], mx.Metric)
		assert.Equal(t, table.Systems, mx.Systems)
		assert.Len(t, mx.Cells, 3*2)
		for _, c := range mx.Cells {
			assert.NotEqual(t, c.Row, c.Col, "diagonal cells must not be produced")
			assert.GreaterOrEqual(t, c.Probability, 0.0)
			assert.LessOrEqual(t, c.Probability, 1.0)
			assert.Equal(t, Classify(c.Probability), c.Band)
		}
		total += len(mx.Cells)
	}
	assert.Equal(t, 2*3*2, total)
}

func TestBuild_AntiSymmetry(t *testing.T) {
	b := NewBuilder(thresholds.NewNormalCDFModel(thresholds.Default()))
	matrices, err := b.Build(threeByTwo())
	require.NoError(t, err)

	for _, mx := range matrices {
		for _, c := range mx.Cells {
			swapped, ok := mx.Cell(c.Col, c.Row)
			require.True(t, ok)
			assert.Equal(t, -c.Diff, swapped.Diff)
			assert.Equal(t, c.Probability, swapped.Probability)
		}
	}
}

func TestBuild_BleuScenario(t *testing.T) {
	b := NewBuilder(thresholds.NewNormalCDFModel(thresholds.Default()))
	matrices, err := b.Build(ScoreTable{
		Systems: []string{"A", "B"},
		Metrics: []string{"bleu"},
		Scores:  [][]float64{{20.0}, {25.0}},
	})
	require.NoError(t, err)
	require.Len(t, matrices, 1)

	ab, ok := matrices[0].Cell("A", "B")
	require.True(t, ok)
	ba, ok := matrices[0].Cell("B", "A")
	require.True(t, ok)

	assert.Equal(t, -5.0, ab.Diff)
	assert.Equal(t, 5.0, ba.Diff)
	assert.Equal(t, ab.Probability, ba.Probability)
	// Five BLEU points is far outside the calibrated noise band.
	assert.Equal(t, VirtuallyCertain, ab.Band)

	_, ok = matrices[0].Cell("A", "A")
	assert.False(t, ok)
}

func TestBuild_UsesModelOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mocks.NewMockNoiseModel(ctrl)

	model.EXPECT().Accuracy(-1.0, "bleu").Return(40.0, nil)
	model.EXPECT().Accuracy(1.0, "bleu").Return(95.0, nil)

	matrices, err := NewBuilder(model).Build(ScoreTable{
		Systems: []string{"A", "B"},
		Metrics: []string{"bleu"},
		Scores:  [][]float64{{10}, {11}},
	})
	require.NoError(t, err)

	ab, _ := matrices[0].Cell("A", "B")
	assert.InDelta(t, 0.40, ab.Probability, 1e-12)
	assert.Equal(t, AboutAsLikelyAsNot, ab.Band)

	ba, _ := matrices[0].Cell("B", "A")
	assert.InDelta(t, 0.95, ba.Probability, 1e-12)
	assert.Equal(t, VeryLikely, ba.Band)
}

func TestBuild_UnknownMetric(t *testing.T) {
	b := NewBuilder(thresholds.NewNormalCDFModel(thresholds.Default()))
	table := threeByTwo()
	table.Metrics[1] = "meteor"

	matrices, err := b.Build(table)
	require.Error(t, err)
	assert.Nil(t, matrices)

	var ume *thresholds.UnknownMetricError
	require.True(t, errors.As(err, &ume))
	assert.Equal(t, "meteor", ume.Metric)
}

func TestBuild_RejectsOutOfRangeModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mocks.NewMockNoiseModel(ctrl)
	model.EXPECT().Accuracy(gomock.Any(), "bleu").Return(120.0, nil)

	_, err := NewBuilder(model).Build(ScoreTable{
		Systems: []string{"A", "B"},
		Metrics: []string{"bleu"},
		Scores:  [][]float64{{10}, {11}},
	})
	assert.ErrorContains(t, err, "want [0, 100]")
}

func TestBuild_InvalidTable(t *testing.T) {
	tests := []struct {
		name  string
		table ScoreTable
	}{
		{"one system", ScoreTable{Systems: []string{"A"}, Metrics: []string{"bleu"}, Scores: [][]float64{{1}}}},
		{"no metrics", ScoreTable{Systems: []string{"A", "B"}, Scores: [][]float64{{}, {}}}},
		{"row count", ScoreTable{Systems: []string{"A", "B"}, Metrics: []string{"bleu"}, Scores: [][]float64{{1}}}},
		{"ragged row", ScoreTable{Systems: []string{"A", "B"}, Metrics: []string{"bleu"}, Scores: [][]float64{{1}, {1, 2}}}},
		{"duplicate system", ScoreTable{Systems: []string{"A", "A"}, Metrics: []string{"bleu"}, Scores: [][]float64{{1}, {2}}}},
	}

	b := NewBuilder(thresholds.NewNormalCDFModel(thresholds.Default()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(tt.table)
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	table := threeByTwo()
	before := threeByTwo()

	matrices, err := NewBuilder(thresholds.NewNormalCDFModel(thresholds.Default())).Build(table)
	require.NoError(t, err)
	matrices[0].Systems[0] = "changed"

	assert.Equal(t, before, table)
}

func TestTableFromResults(t *testing.T) {
	p := 0.01
	results := []statistics.MetricResult{
		{Metric: "bleu", Results: []statistics.Result{{System: "A", Score: 20}, {System: "B", Score: 25, PValue: &p}}},
		{Metric: "chrf", Results: []statistics.Result{{System: "A", Score: 50}, {System: "B", Score: 48, PValue: &p}}},
	}

	table, err := TableFromResults(results)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, table.Systems)
	assert.Equal(t, []string{"bleu", "chrf"}, table.Metrics)
	assert.Equal(t, [][]float64{{20, 50}, {25, 48}}, table.Scores)

	results[1].Results[1].System = "C"
	_, err = TableFromResults(results)
	assert.ErrorIs(t, err, ErrInvalidTable)

	_, err = TableFromResults(nil)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestScoreTable_Select(t *testing.T) {
	table := threeByTwo()
	table.Metrics[0] = "meteor"

	kept, dropped := table.Select(thresholds.Default().Has)
	assert.Equal(t, []string{"meteor"}, dropped)
	assert.Equal(t, []string{"chrf"}, kept.Metrics)
	assert.Equal(t, [][]float64{{55.0}, {54.5}, {61.0}}, kept.Scores)
	assert.Equal(t, "meteor", table.Metrics[0])
}
