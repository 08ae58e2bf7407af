package reporting

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/luxeval/luxeval/internal/accuracy"
	"github.com/luxeval/luxeval/internal/models"
	"github.com/luxeval/luxeval/internal/statistics"
	"github.com/luxeval/luxeval/internal/thresholds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

// sampleOutcome compares baseline A (20.0) against B (25.0) and C (18.0)
// on bleu, with a matrix built from the builtin profile.
func sampleOutcome(t *testing.T) *models.ComparisonOutcome {
	t.Helper()
	sig := []statistics.MetricResult{{
		Metric: "bleu",
		Results: []statistics.Result{
			{System: "A", Score: 20, Mean: 20.01, CI: 0.42},
			{System: "B", Score: 25, Mean: 24.98, CI: 0.40, PValue: ptr(0.001)},
			{System: "C", Score: 18, Mean: 18.02, CI: 0.51, PValue: ptr(0.004)},
		},
	}}
	table, err := accuracy.TableFromResults(sig)
	require.NoError(t, err)
	matrices, err := accuracy.NewBuilder(thresholds.NewNormalCDFModel(thresholds.Default())).Build(table)
	require.NoError(t, err)

	return &models.ComparisonOutcome{
		RunID:     "run-1",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Config: models.OutcomeConfig{
			Resamples:       1000,
			Seed:            12345,
			ConfidenceLevel: 0.95,
			NoiseModel:      "normal-cdf",
			Alpha:           0.05,
		},
		Baseline:     "A",
		Systems:      []string{"A", "B", "C"},
		Significance: sig,
		Matrices:     matrices,
		Legend:       accuracy.Legend(),
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table, json, markdown, html, junit")
}

func TestFormatResult(t *testing.T) {
	base := statistics.Result{System: "A", Score: 20, Mean: 20.01, CI: 0.42}
	assert.Equal(t, "20.0 (20.0 ± 0.4)", FormatResult(base, 0.05))

	sig := statistics.Result{System: "B", Score: 25, Mean: 24.98, CI: 0.4, PValue: ptr(0.001)}
	assert.Equal(t, "25.0 (25.0 ± 0.4) (p = 0.0010)*", FormatResult(sig, 0.05))

	notSig := statistics.Result{System: "B", Score: 20, Mean: 20, CI: 0.4, PValue: ptr(1)}
	assert.Equal(t, "20.0 (20.0 ± 0.4) (p = 1.0000)", FormatResult(notSig, 0.05))
}

func TestFormatCell(t *testing.T) {
	c := accuracy.Cell{Diff: -5, Probability: 0.99999}
	assert.Equal(t, "-5.00 (99%)", FormatCell(c), "percentage truncates")

	c = accuracy.Cell{Diff: 0.123, Probability: 0.4}
	assert.Equal(t, "0.12 (40%)", FormatCell(c))
}

func TestSystemLabelAndInterpretBand(t *testing.T) {
	assert.Equal(t, "Baseline: A", SystemLabel("A", true))
	assert.Equal(t, "B", SystemLabel("B", false))
	assert.Equal(t, "Very likely", InterpretBand(accuracy.VeryLikely))
	assert.Equal(t, "About as likely as not", InterpretBand(accuracy.AboutAsLikelyAsNot))
}

func TestWrite_AllFormats(t *testing.T) {
	o := sampleOutcome(t)
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, o, f, 0.05))
			assert.NotEmpty(t, buf.String())
		})
	}

	var buf bytes.Buffer
	assert.Error(t, Write(&buf, o, Format("csv"), 0.05))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleOutcome(t)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, "A", decoded["baseline"])
	config := decoded["config"].(map[string]any)
	assert.Equal(t, "normal-cdf", config["noise_model"])

	matrices := decoded["accuracy_matrices"].([]any)
	require.Len(t, matrices, 1)
	cells := matrices[0].(map[string]any)["cells"].([]any)
	assert.Len(t, cells, 6)
	first := cells[0].(map[string]any)
	assert.Equal(t, "virtually certain", first["band"], "bands encode by name")
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleOutcome(t), 0.05))
	out := buf.String()

	assert.Contains(t, out, "PAIRED BOOTSTRAP  (1000 resamples, seed 12345)")
	assert.Contains(t, out, "bleu (μ ± 95% CI)")
	assert.Contains(t, out, "Baseline: A")
	assert.Contains(t, out, "25.0 (25.0 ± 0.4) (p = 0.0010)* ▲")
	assert.Contains(t, out, "BLEU DIFFERENCE MATRIX")
	assert.Contains(t, out, "-5.00 (99%)")
	assert.Contains(t, out, "5.00 (99%)")
	assert.Contains(t, out, "Virtually certain: > 99%")

	assert.Contains(t, out, "—", "diagonal marker")
}

func TestWriteTable_LowerIsBetter(t *testing.T) {
	o := sampleOutcome(t)
	o.LowerIsBetter = []string{"bleu"}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, o, 0.05))
	out := buf.String()

	assert.Contains(t, out, "bleu ↓ (μ ± 95% CI)")
	assert.Contains(t, out, "18.0 (18.0 ± 0.5) (p = 0.0040)* ▲")
	assert.NotContains(t, out, "25.0 (25.0 ± 0.4) (p = 0.0010)* ▲")
}

func TestWriteTable_SkippedMetrics(t *testing.T) {
	o := sampleOutcome(t)
	o.Matrices = nil
	o.SkippedMetrics = []string{"comet"}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, o, 0.05))
	assert.Contains(t, buf.String(), "matrix skipped: comet")
	assert.NotContains(t, buf.String(), "Probability legend")
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcdef", padRight("abcdef", 4))
	assert.Equal(t, "日本 ", padRight("日本", 5), "wide runes count as two columns")
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleOutcome(t), 0.05)

	assert.Contains(t, md, "# System comparison")
	assert.Contains(t, md, "| system | bleu (μ ± 95% CI) |")
	assert.Contains(t, md, `| **25.0 (25.0 ± 0.4) (p = 0.0010)\*** |`)
	assert.Contains(t, md, "## bleu difference matrix")
	assert.Contains(t, md, "| bleu | A | B | C |")
	assert.Contains(t, md, "| A |  | -5.00 (99%) |")
	assert.Contains(t, md, "- Exceptionally unlikely: < 1%")
}

func TestRenderHTML(t *testing.T) {
	page, err := RenderHTML(sampleOutcome(t), 0.05)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Comparison run-1</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, `<span style="background-color:#23b150" title="Virtually certain">-5.00 (99%)</span>`)
	assert.Contains(t, page, "<strong>")
}

func TestRenderHTML_EscapesNames(t *testing.T) {
	const name = `<img src=x onerror=alert(1)>`
	o := sampleOutcome(t)
	o.Systems[2] = name
	o.Significance[0].Results[2].System = name
	o.Matrices[0].Systems[2] = name
	o.SkippedMetrics = []string{"<b>comet</b>"}

	page, err := RenderHTML(o, 0.05)
	require.NoError(t, err)
	assert.NotContains(t, page, "<img")
	assert.NotContains(t, page, "<b>")
	assert.Contains(t, page, "onerror", "the name is shown as text")

	md := RenderMarkdown(o, 0.05)
	assert.Contains(t, md, "| "+name+" |", "markdown keeps names verbatim")
}
