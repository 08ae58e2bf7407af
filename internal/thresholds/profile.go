// Package thresholds holds the per-metric noise calibration used to turn a
// score difference into the probability that the difference is real.
package thresholds

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownMetric matches every UnknownMetricError via errors.Is.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrInvalidCalibration is returned for profile entries that cannot
	// parameterize a noise model.
	ErrInvalidCalibration = errors.New("invalid calibration")
)

// UnknownMetricError is returned when a metric has no calibration.
type UnknownMetricError struct {
	Metric string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q: no threshold calibration", e.Metric)
}

func (e *UnknownMetricError) Is(target error) bool {
	return target == ErrUnknownMetric
}

// Calibration is the (mu, sigma) pair describing the distribution of
// insignificant score differences for one metric, on the score-percentage
// scale.
type Calibration struct {
	Mu    float64 `json:"mu" yaml:"mu"`
	Sigma float64 `json:"sigma" yaml:"sigma"`
}

func (c Calibration) validate() error {
	if math.IsNaN(c.Mu) || math.IsInf(c.Mu, 0) {
		return fmt.Errorf("%w: mu must be finite", ErrInvalidCalibration)
	}
	if !(c.Sigma > 0) || math.IsInf(c.Sigma, 0) {
		return fmt.Errorf("%w: sigma must be positive and finite, got %v", ErrInvalidCalibration, c.Sigma)
	}
	return nil
}

// Profile is an immutable metric → Calibration mapping. A *Profile is safe
// for concurrent use.
type Profile struct {
	entries map[string]Calibration
	names   []string
}

// NewProfile validates and copies entries into a Profile.
func NewProfile(entries map[string]Calibration) (*Profile, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: profile has no metrics", ErrInvalidCalibration)
	}
	p := &Profile{
		entries: make(map[string]Calibration, len(entries)),
		names:   make([]string, 0, len(entries)),
	}
	for name, c := range entries {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: empty metric name", ErrInvalidCalibration)
		}
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("metric %q: %w", name, err)
		}
		p.entries[name] = c
		p.names = append(p.names, name)
	}
	sort.Strings(p.names)
	return p, nil
}

// Lookup returns the calibration for metric or an *UnknownMetricError.
func (p *Profile) Lookup(metric string) (Calibration, error) {
	c, ok := p.entries[metric]
	if !ok {
		return Calibration{}, &UnknownMetricError{Metric: metric}
	}
	return c, nil
}

// Has reports whether metric is calibrated.
func (p *Profile) Has(metric string) bool {
	_, ok := p.entries[metric]
	return ok
}

// Metrics returns the calibrated metric names in sorted order.
func (p *Profile) Metrics() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of calibrated metrics.
func (p *Profile) Len() int {
	return len(p.names)
}

// Parse decodes a profile document. The document maps metric names to a
// two-element [mu, sigma] list; YAML and JSON are both accepted.
func Parse(data []byte) (*Profile, error) {
	var raw map[string][]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing threshold profile: %w", err)
	}
	return fromPairs(raw)
}

// LoadFile reads a profile document from path.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading threshold profile: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var raw map[string][]float64
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing threshold profile %s: %w", path, err)
		}
		return fromPairs(raw)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func fromPairs(raw map[string][]float64) (*Profile, error) {
	entries := make(map[string]Calibration, len(raw))
	for name, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: metric %q needs [mu, sigma], got %d values", ErrInvalidCalibration, name, len(pair))
		}
		entries[name] = Calibration{Mu: pair[0], Sigma: pair[1]}
	}
	return NewProfile(entries)
}
