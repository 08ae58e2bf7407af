package orchestration

import (
	"fmt"
	"path/filepath"
)

// FilterMetrics returns the metrics matching at least one of the given glob
// patterns, in their original order. An empty patterns slice returns all
// metrics unchanged.
func FilterMetrics(metrics []string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return metrics, nil
	}

	var matched []string
	for _, m := range metrics {
		ok, err := matchesAny(m, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

// matchesAny reports whether name matches any pattern.
func matchesAny(name string, patterns []string) (bool, error) {
	for _, p := range patterns {
		ok, err := filepath.Match(p, name)
		if err != nil {
			return false, fmt.Errorf("invalid metric filter pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
