package reporting

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/luxeval/luxeval/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one metric.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one candidate system compared with the baseline.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

// JUnitFailure marks a significant regression.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a ComparisonOutcome to JUnit XML. A candidate
// fails when it scores significantly worse than the baseline at alpha.
func ConvertToJUnit(outcome *models.ComparisonOutcome, alpha float64) *JUnitTestSuites {
	regressed := make(map[[2]string]models.Regression)
	for _, r := range outcome.Regressions(alpha) {
		regressed[[2]string{r.Metric, r.System}] = r
	}

	out := &JUnitTestSuites{}
	for _, mr := range outcome.Significance {
		if len(mr.Results) == 0 {
			continue
		}
		base := mr.Results[0]
		direction := "higher_is_better"
		if outcome.IsLowerBetter(mr.Metric) {
			direction = "lower_is_better"
		}
		suite := JUnitTestSuite{
			Name:      mr.Metric,
			Timestamp: outcome.Timestamp.Format(time.RFC3339),
			Properties: []JUnitProperty{
				{Name: "baseline", Value: base.System},
				{Name: "baseline_score", Value: fmt.Sprintf("%.4f", base.Score)},
				{Name: "direction", Value: direction},
				{Name: "resamples", Value: fmt.Sprintf("%d", outcome.Config.Resamples)},
				{Name: "seed", Value: fmt.Sprintf("%d", outcome.Config.Seed)},
			},
		}
		for _, r := range mr.Results[1:] {
			tc := JUnitTestCase{Name: r.System, Classname: mr.Metric}
			if reg, ok := regressed[[2]string{mr.Metric, r.System}]; ok {
				tc.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%s regressed on %s: %+.4f (p = %.4f)", r.System, mr.Metric, reg.Delta, *reg.PValue),
					Type:    "SignificantRegression",
					Body:    FormatResult(r, alpha),
				}
				suite.Failures++
			}
			suite.Tests++
			suite.TestCases = append(suite.TestCases, tc)
		}
		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

// WriteJUnitXML writes the JUnit XML rendering of outcome to w.
func WriteJUnitXML(w io.Writer, outcome *models.ComparisonOutcome, alpha float64) error {
	suites := ConvertToJUnit(outcome, alpha)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
