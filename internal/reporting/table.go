package reporting

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/luxeval/luxeval/internal/accuracy"
	"github.com/luxeval/luxeval/internal/models"
	"github.com/mattn/go-runewidth"
)

const ruleWidth = 70

// WriteTable writes a plain-text report: significance table, accuracy
// matrices and the band legend.
func WriteTable(w io.Writer, o *models.ComparisonOutcome, alpha float64) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, strings.Repeat("=", ruleWidth))
	fmt.Fprintf(bw, " PAIRED BOOTSTRAP  (%d resamples, seed %d)\n", o.Config.Resamples, o.Config.Seed)
	fmt.Fprintln(bw, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(bw)

	header, rows := significanceRows(o, alpha, func(s string, best bool) string {
		if best {
			return s + " ▲"
		}
		return s
	})
	writeColumns(bw, header, rows)
	fmt.Fprintf(bw, "\n  * p < %g versus baseline   ▲ best score   ↓ lower is better\n\n", alpha)

	for _, m := range o.Matrices {
		fmt.Fprintln(bw, strings.Repeat("-", ruleWidth))
		fmt.Fprintf(bw, " %s DIFFERENCE MATRIX  (row − column, P(real))\n", strings.ToUpper(m.Metric))
		fmt.Fprintln(bw, strings.Repeat("-", ruleWidth))
		header, rows := matrixRows(m, FormatCell, "—")
		writeColumns(bw, header, rows)
		fmt.Fprintln(bw)
	}

	if len(o.SkippedMetrics) > 0 {
		fmt.Fprintf(bw, "  No threshold calibration, matrix skipped: %s\n\n", strings.Join(o.SkippedMetrics, ", "))
	}

	if len(o.Matrices) > 0 {
		fmt.Fprintln(bw, " Probability legend:")
		for _, e := range accuracy.Legend() {
			fmt.Fprintf(bw, "   %s\n", e.Label)
		}
	}

	return bw.Flush()
}

func writeColumns(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if sw := runewidth.StringWidth(c); sw > widths[i] {
				widths[i] = sw
			}
		}
	}

	line := func(cells []string) {
		var b strings.Builder
		b.WriteString(" ")
		for i, c := range cells {
			b.WriteString(" ")
			if i == len(cells)-1 {
				b.WriteString(c)
				continue
			}
			b.WriteString(padRight(c, widths[i]))
			b.WriteString(" ")
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	line(header)
	for _, r := range rows {
		line(r)
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
