package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/luxeval/luxeval/internal/thresholds"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var (
	thresholdsFile   string
	thresholdsFormat string
)

func newThresholdsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "List the calibrated metrics of a threshold profile",
		Long: `List every metric of a threshold profile with its calibration.

mu is the best accuracy the metric reaches and sigma the scale of its noise.
Without --file the built-in profile is listed.`,
		Args: cobra.NoArgs,
		RunE: thresholdsCommandE,
	}

	cmd.Flags().StringVar(&thresholdsFile, "file", "", "Threshold profile file (YAML or JSON)")
	cmd.Flags().StringVarP(&thresholdsFormat, "format", "f", "table", "Output format: table or json")

	return cmd
}

type thresholdRow struct {
	Metric string  `json:"metric"`
	Mu     float64 `json:"mu"`
	Sigma  float64 `json:"sigma"`
}

func thresholdsCommandE(cmd *cobra.Command, _ []string) error {
	if thresholdsFormat != "table" && thresholdsFormat != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", thresholdsFormat)
	}

	profile, err := loadProfile(thresholdsFile)
	if err != nil {
		return err
	}

	rows := profileRows(profile)

	out := cmd.OutOrStdout()
	if thresholdsFormat == "json" {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal thresholds: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	printThresholdsTable(out, rows)
	return nil
}

// profileRows lists the calibrations of p in metric order.
func profileRows(p *thresholds.Profile) []thresholdRow {
	rows := make([]thresholdRow, 0, p.Len())
	for _, m := range p.Metrics() {
		c, err := p.Lookup(m)
		if err != nil {
			continue
		}
		rows = append(rows, thresholdRow{Metric: m, Mu: c.Mu, Sigma: c.Sigma})
	}
	return rows
}

func printThresholdsTable(w io.Writer, rows []thresholdRow) {
	width := runewidth.StringWidth("metric")
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.Metric))
	}

	fmt.Fprintf(w, "%s  %8s  %8s\n", padRight("metric", width), "mu", "sigma")
	for _, r := range rows {
		fmt.Fprintf(w, "%s  %8.2f  %8.4f\n", padRight(r.Metric, width), r.Mu, r.Sigma)
	}
	fmt.Fprintf(w, "\n%d metric(s)\n", len(rows))
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + fmt.Sprintf("%*s", width-sw, "")
}
