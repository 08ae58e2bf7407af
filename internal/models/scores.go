package models

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/luxeval/luxeval/internal/accuracy"
	"github.com/luxeval/luxeval/internal/statistics"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned for score documents that cannot feed a
// comparison.
var ErrInvalidDocument = errors.New("invalid score document")

// ScoreDocument is the segment-level scores of several systems, as produced
// by the scoring backends. It is read from YAML or JSON.
type ScoreDocument struct {
	// Baseline names the reference system. Defaults to the first system.
	Baseline string `yaml:"baseline,omitempty" json:"baseline,omitempty"`
	// Metrics fixes the metric order. Defaults to the sorted metric names of
	// the first system.
	Metrics []string `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	// LowerIsBetter holds glob patterns of metrics where a lower score
	// wins, on top of DefaultLowerIsBetter.
	LowerIsBetter []string      `yaml:"lower_is_better,omitempty" json:"lower_is_better,omitempty"`
	Systems       []SystemEntry `yaml:"systems" json:"systems"`
}

// SystemEntry is one system's scores.
type SystemEntry struct {
	Name     string               `yaml:"name" json:"name"`
	Segments map[string][]float64 `yaml:"segments" json:"segments"`
	// Scores optionally overrides the corpus score of a metric, for backends
	// whose corpus score is not the segment mean (e.g. BLEU).
	Scores map[string]float64 `yaml:"scores,omitempty" json:"scores,omitempty"`
}

// ParseScores decodes and normalizes a score document.
func ParseScores(data []byte) (*ScoreDocument, error) {
	var doc ScoreDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing score document: %w", err)
	}
	if err := doc.Normalize(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadScores reads a score document from path.
func LoadScores(path string) (*ScoreDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading score document: %w", err)
	}
	doc, err := ParseScores(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Normalize moves the baseline to the front, resolves the metric order and
// checks that every system carries every metric with the baseline's
// segment count. Systems other than the baseline keep their document order.
func (d *ScoreDocument) Normalize() error {
	if len(d.Systems) < 2 {
		return fmt.Errorf("%w: need at least 2 systems, got %d", ErrInvalidDocument, len(d.Systems))
	}

	seen := make(map[string]bool, len(d.Systems))
	for _, s := range d.Systems {
		if s.Name == "" {
			return fmt.Errorf("%w: system without a name", ErrInvalidDocument)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate system %q", ErrInvalidDocument, s.Name)
		}
		seen[s.Name] = true
	}

	if d.Baseline == "" {
		d.Baseline = d.Systems[0].Name
	}
	if !seen[d.Baseline] {
		return fmt.Errorf("%w: baseline %q is not among the systems", ErrInvalidDocument, d.Baseline)
	}
	for i, s := range d.Systems {
		if s.Name == d.Baseline && i > 0 {
			base := d.Systems[i]
			copy(d.Systems[1:i+1], d.Systems[0:i])
			d.Systems[0] = base
			break
		}
	}

	if len(d.Metrics) == 0 {
		for name := range d.Systems[0].Segments {
			d.Metrics = append(d.Metrics, name)
		}
		sort.Strings(d.Metrics)
	}
	if len(d.Metrics) == 0 {
		return fmt.Errorf("%w: no metrics", ErrInvalidDocument)
	}

	metricSeen := make(map[string]bool, len(d.Metrics))
	for _, m := range d.Metrics {
		if metricSeen[m] {
			return fmt.Errorf("%w: metric %q listed twice", ErrInvalidDocument, m)
		}
		metricSeen[m] = true
		want := len(d.Systems[0].Segments[m])
		for _, s := range d.Systems {
			n := len(s.Segments[m])
			if n == 0 {
				return fmt.Errorf("%w: system %q has no segments for metric %q", ErrInvalidDocument, s.Name, m)
			}
			if n != want {
				return fmt.Errorf("%w: system %q has %d segments for metric %q, baseline %q has %d",
					ErrInvalidDocument, s.Name, n, m, d.Baseline, want)
			}
		}
	}
	return nil
}

// SystemNames returns the system names, baseline first.
func (d *ScoreDocument) SystemNames() []string {
	names := make([]string, len(d.Systems))
	for i, s := range d.Systems {
		names[i] = s.Name
	}
	return names
}

// Samples converts the document into paired bootstrap input, one entry per
// metric in metric order. Segment slices are shared with the document.
func (d *ScoreDocument) Samples() []statistics.MetricSamples {
	out := make([]statistics.MetricSamples, 0, len(d.Metrics))
	for _, m := range d.Metrics {
		ms := statistics.MetricSamples{Metric: m, Systems: make([]statistics.SystemScores, 0, len(d.Systems))}
		for _, s := range d.Systems {
			ms.Systems = append(ms.Systems, statistics.SystemScores{Name: s.Name, Scores: s.Segments[m]})
		}
		out = append(out, ms)
	}
	return out
}

// Table returns the corpus scores in system × metric layout. A metric's
// corpus score is the segment mean unless the system overrides it.
func (d *ScoreDocument) Table() accuracy.ScoreTable {
	t := accuracy.ScoreTable{
		Systems: d.SystemNames(),
		Metrics: append([]string(nil), d.Metrics...),
		Scores:  make([][]float64, len(d.Systems)),
	}
	for i, s := range d.Systems {
		row := make([]float64, len(d.Metrics))
		for j, m := range d.Metrics {
			if v, ok := s.Scores[m]; ok {
				row[j] = v
				continue
			}
			row[j] = segmentMean(s.Segments[m])
		}
		t.Scores[i] = row
	}
	return t
}

func segmentMean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
