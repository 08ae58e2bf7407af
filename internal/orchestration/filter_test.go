package orchestration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMetrics() []string {
	return []string{"bleu", "bleurt-default", "chrf", "comet-22", "comet-20"}
}

func TestFilterMetrics_NoPatterns(t *testing.T) {
	result, err := FilterMetrics(sampleMetrics(), nil)
	require.NoError(t, err)
	assert.Len(t, result, 5, "empty patterns should return all metrics")
}

func TestFilterMetrics_ExactName(t *testing.T) {
	result, err := FilterMetrics(sampleMetrics(), []string{"chrf"})
	require.NoError(t, err)
	assert.Equal(t, []string{"chrf"}, result)
}

func TestFilterMetrics_GlobPattern(t *testing.T) {
	result, err := FilterMetrics(sampleMetrics(), []string{"comet*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"comet-22", "comet-20"}, result, "original order is kept")
}

func TestFilterMetrics_MultiplePatterns(t *testing.T) {
	result, err := FilterMetrics(sampleMetrics(), []string{"bleu", "comet-2?"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bleu", "comet-22", "comet-20"}, result)
}

func TestFilterMetrics_NoMatch(t *testing.T) {
	result, err := FilterMetrics(sampleMetrics(), []string{"ter"})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestFilterMetrics_InvalidPattern(t *testing.T) {
	_, err := FilterMetrics(sampleMetrics(), []string{"[invalid"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid metric filter pattern")
}
