// Package reporting renders comparison outcomes for people and machines.
package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/luxeval/luxeval/internal/accuracy"
	"github.com/luxeval/luxeval/internal/models"
	"github.com/luxeval/luxeval/internal/statistics"
)

// Format is an output rendering.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJUnit    Format = "junit"
)

// Formats lists every supported format.
var Formats = []Format{FormatTable, FormatJSON, FormatMarkdown, FormatHTML, FormatJUnit}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unsupported format %q: must be one of %s", s, strings.Join(names, ", "))
}

// Write renders outcome to w in format. alpha is the p-value threshold
// used for significance markers.
func Write(w io.Writer, outcome *models.ComparisonOutcome, format Format, alpha float64) error {
	switch format {
	case FormatTable:
		return WriteTable(w, outcome, alpha)
	case FormatJSON:
		return WriteJSON(w, outcome)
	case FormatMarkdown:
		_, err := io.WriteString(w, RenderMarkdown(outcome, alpha))
		return err
	case FormatHTML:
		page, err := RenderHTML(outcome, alpha)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	case FormatJUnit:
		return WriteJUnitXML(w, outcome, alpha)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteJSON writes outcome as indented JSON.
func WriteJSON(w io.Writer, outcome *models.ComparisonOutcome) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal comparison outcome: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// FormatResult renders a bootstrap result as "score (mean ± ci)", followed
// for candidates by " (p = 0.0123)" and a "*" when p < alpha.
func FormatResult(r statistics.Result, alpha float64) string {
	s := fmt.Sprintf("%.1f (%.1f ± %.1f)", r.Score, r.Mean, r.CI)
	if r.PValue != nil {
		s += fmt.Sprintf(" (p = %.4f)", *r.PValue)
		if *r.PValue < alpha {
			s += "*"
		}
	}
	return s
}

// FormatCell renders a matrix cell as "diff (pct%)"; the percentage is
// truncated, never rounded up.
func FormatCell(c accuracy.Cell) string {
	return fmt.Sprintf("%.2f (%d%%)", c.Diff, int(c.Probability*100))
}

// SystemLabel prefixes the baseline's name.
func SystemLabel(name string, baseline bool) string {
	if baseline {
		return "Baseline: " + name
	}
	return name
}

// InterpretBand returns the display label of a band, e.g. "Very likely".
func InterpretBand(b accuracy.Band) string {
	s := b.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ciHeader labels a result column. Lower-is-better metrics carry a "↓".
func ciHeader(metric string, level float64, lowerIsBetter bool) string {
	if lowerIsBetter {
		metric += " ↓"
	}
	return fmt.Sprintf("%s (μ ± %.4g%% CI)", metric, level*100)
}

// significanceRows returns the header and body of the significance table.
// Row i is system i; column j+1 is metric j. style decorates each result
// cell and is told whether the system holds the best score.
func significanceRows(o *models.ComparisonOutcome, alpha float64, style func(cell string, best bool) string) ([]string, [][]string) {
	header := []string{"system"}
	for _, mr := range o.Significance {
		header = append(header, ciHeader(mr.Metric, o.Config.ConfidenceLevel, o.IsLowerBetter(mr.Metric)))
	}

	best := o.BestSystems()
	rows := make([][]string, len(o.Systems))
	for i, name := range o.Systems {
		rows[i] = []string{SystemLabel(name, i == 0)}
	}
	for _, mr := range o.Significance {
		for i, r := range mr.Results {
			isBest := slices.Contains(best[mr.Metric], r.System)
			rows[i] = append(rows[i], style(FormatResult(r, alpha), isBest))
		}
	}
	return header, rows
}

// matrixRows returns the header and body of an accuracy matrix with the
// diagonal filled by diagonal.
func matrixRows(m accuracy.Matrix, cell func(accuracy.Cell) string, diagonal string) ([]string, [][]string) {
	header := append([]string{m.Metric}, m.Systems...)
	rows := make([][]string, len(m.Systems))
	for i, name := range m.Systems {
		rows[i] = make([]string, len(m.Systems)+1)
		rows[i][0] = name
		rows[i][i+1] = diagonal
	}
	for _, c := range m.Cells {
		rows[c.RowIndex][c.ColIndex+1] = cell(c)
	}
	return header, rows
}
