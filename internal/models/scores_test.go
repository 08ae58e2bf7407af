package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScoresYAML = `
baseline: sysB
systems:
  - name: sysA
    segments:
      bleu: [10, 20, 30]
      chrf: [40, 50, 60]
  - name: sysB
    segments:
      bleu: [15, 25, 35]
      chrf: [45, 55, 65]
    scores:
      bleu: 24.1
  - name: sysC
    segments:
      bleu: [11, 21, 31]
      chrf: [41, 51, 61]
`

func TestParseScores_MovesBaselineFirst(t *testing.T) {
	doc, err := ParseScores([]byte(sampleScoresYAML))
	require.NoError(t, err)

	assert.Equal(t, "sysB", doc.Baseline)
	assert.Equal(t, []string{"sysB", "sysA", "sysC"}, doc.SystemNames())
	assert.Equal(t, []string{"bleu", "chrf"}, doc.Metrics)
}

func TestParseScores_JSON(t *testing.T) {
	doc, err := ParseScores([]byte(`{
		"metrics": ["chrf", "bleu"],
		"systems": [
			{"name": "A", "segments": {"bleu": [1, 2], "chrf": [3, 4]}},
			{"name": "B", "segments": {"bleu": [2, 3], "chrf": [4, 5]}}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "A", doc.Baseline)
	assert.Equal(t, []string{"chrf", "bleu"}, doc.Metrics, "explicit metric order is kept")
}

func TestScoreDocument_Samples(t *testing.T) {
	doc, err := ParseScores([]byte(sampleScoresYAML))
	require.NoError(t, err)

	samples := doc.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, "bleu", samples[0].Metric)
	require.Len(t, samples[0].Systems, 3)
	assert.Equal(t, "sysB", samples[0].Systems[0].Name)
	assert.Equal(t, []float64{15, 25, 35}, samples[0].Systems[0].Scores)
	assert.Equal(t, "chrf", samples[1].Metric)
	assert.Equal(t, []float64{41, 51, 61}, samples[1].Systems[2].Scores)
}

func TestScoreDocument_Table(t *testing.T) {
	doc, err := ParseScores([]byte(sampleScoresYAML))
	require.NoError(t, err)

	table := doc.Table()
	assert.Equal(t, []string{"sysB", "sysA", "sysC"}, table.Systems)
	assert.Equal(t, []string{"bleu", "chrf"}, table.Metrics)
	assert.Equal(t, [][]float64{{24.1, 55}, {20, 50}, {21, 51}}, table.Scores)
}

func TestParseScores_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"one system", "systems:\n  - name: A\n    segments: {bleu: [1]}\n"},
		{"unnamed system", "systems:\n  - segments: {bleu: [1]}\n  - name: B\n    segments: {bleu: [1]}\n"},
		{"duplicate system", "systems:\n  - name: A\n    segments: {bleu: [1]}\n  - name: A\n    segments: {bleu: [1]}\n"},
		{"unknown baseline", "baseline: Z\nsystems:\n  - name: A\n    segments: {bleu: [1]}\n  - name: B\n    segments: {bleu: [1]}\n"},
		{"missing metric", "systems:\n  - name: A\n    segments: {bleu: [1], chrf: [2]}\n  - name: B\n    segments: {bleu: [1]}\n"},
		{"unequal segment counts", "systems:\n  - name: A\n    segments: {bleu: [1, 2]}\n  - name: B\n    segments: {bleu: [1]}\n"},
		{"empty segments", "systems:\n  - name: A\n    segments: {bleu: []}\n  - name: B\n    segments: {bleu: []}\n"},
		{"no metrics", "systems:\n  - name: A\n  - name: B\n"},
		{"duplicate metric", "metrics: [bleu, bleu]\nsystems:\n  - name: A\n    segments: {bleu: [1]}\n  - name: B\n    segments: {bleu: [1]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScores([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestParseScores_Malformed(t *testing.T) {
	_, err := ParseScores([]byte("systems: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing score document")
}

func TestLoadScores(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "scores.yaml")
	require.NoError(t, os.WriteFile(p, []byte(sampleScoresYAML), 0o644))

	doc, err := LoadScores(p)
	require.NoError(t, err)
	assert.Len(t, doc.Systems, 3)

	_, err = LoadScores(filepath.Join(dir, "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
