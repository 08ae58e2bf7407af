package reporting

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/luxeval/luxeval/internal/accuracy"
	"github.com/luxeval/luxeval/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

// RenderMarkdown renders outcome as GitHub-flavored markdown.
func RenderMarkdown(o *models.ComparisonOutcome, alpha float64) string {
	return renderMarkdown(o, alpha, FormatCell, func(s string) string { return s })
}

// RenderHTML renders outcome as a standalone HTML page. Matrix cells are
// shaded with the color of their probability band.
func RenderHTML(o *models.ComparisonOutcome, alpha float64) (string, error) {
	src := renderMarkdown(o, alpha, func(c accuracy.Cell) string {
		return fmt.Sprintf(`<span style="background-color:%s" title="%s">%s</span>`,
			c.Band.Color(), html.EscapeString(InterpretBand(c.Band)), html.EscapeString(FormatCell(c)))
	}, html.EscapeString)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithRendererOptions(goldhtml.WithUnsafe()),
	)
	var body bytes.Buffer
	if err := md.Convert([]byte(src), &body); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>Comparison %s</title>\n", html.EscapeString(o.RunID))
	b.WriteString("<style>body{font-family:sans-serif}table{border-collapse:collapse}th,td{border:1px solid #ccc;padding:4px 8px}</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// renderMarkdown builds the markdown report. text escapes every system and
// metric name before it enters the source.
func renderMarkdown(o *models.ComparisonOutcome, alpha float64, cell func(accuracy.Cell) string, text func(string) string) string {
	var b strings.Builder

	b.WriteString("# System comparison\n\n")
	fmt.Fprintf(&b, "Paired bootstrap with %d resamples (seed %d). Baseline: **%s**.\n\n",
		o.Config.Resamples, o.Config.Seed, escapeCell(text(o.Baseline)))

	header, rows := significanceRows(o, alpha, func(s string, best bool) string {
		s = strings.ReplaceAll(s, "*", `\*`)
		if best {
			return "**" + s + "**"
		}
		return s
	})
	escapeNames(header, rows, text)
	writeMarkdownTable(&b, header, rows)
	fmt.Fprintf(&b, "\n\\* p < %g versus baseline. Best score per metric in bold. ↓ marks metrics where lower is better.\n", alpha)

	for _, m := range o.Matrices {
		fmt.Fprintf(&b, "\n## %s difference matrix\n\n", escapeCell(text(m.Metric)))
		b.WriteString("Each cell is row minus column, with the probability that the difference is real.\n\n")
		header, rows := matrixRows(m, cell, "")
		escapeNames(header, rows, text)
		writeMarkdownTable(&b, header, rows)
	}

	if len(o.SkippedMetrics) > 0 {
		fmt.Fprintf(&b, "\nNo threshold calibration for: %s.\n", escapeCell(text(strings.Join(o.SkippedMetrics, ", "))))
	}

	if len(o.Matrices) > 0 {
		b.WriteString("\n## Legend\n\n")
		for _, e := range accuracy.Legend() {
			fmt.Fprintf(&b, "- %s\n", e.Label)
		}
	}
	return b.String()
}

// escapeNames applies text to the header and the first column, the cells
// that hold system and metric names.
func escapeNames(header []string, rows [][]string, text func(string) string) {
	for i := range header {
		header[i] = text(header[i])
	}
	for _, r := range rows {
		r[0] = text(r[0])
	}
}

func writeMarkdownTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("|")
	for _, h := range header {
		b.WriteString(" " + escapeCell(h) + " |")
	}
	b.WriteString("\n|")
	for range header {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString("|")
		for _, c := range r {
			b.WriteString(" " + strings.ReplaceAll(c, "|", `\|`) + " |")
		}
		b.WriteString("\n")
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
