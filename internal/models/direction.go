package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultLowerIsBetter matches the error metrics whose scores fall as
// quality rises: TER and the MetricX family.
var DefaultLowerIsBetter = []string{"ter", "metricx-*"}

// ResolveLowerIsBetter returns the metrics matching any of the glob
// patterns, in metric order. Matching ignores case.
func ResolveLowerIsBetter(metrics, patterns []string) ([]string, error) {
	var out []string
	for _, m := range metrics {
		name := strings.ToLower(m)
		for _, p := range patterns {
			ok, err := filepath.Match(strings.ToLower(p), name)
			if err != nil {
				return nil, fmt.Errorf("invalid lower_is_better pattern %q: %w", p, err)
			}
			if ok {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}
