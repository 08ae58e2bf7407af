package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Comparison completed
	ExitRegression = 1 // --fail-on-regression found a significant regression
	ExitError      = 2 // Configuration, input or runtime error
)

// RegressionError indicates that the comparison ran successfully, but at
// least one system scored significantly below the baseline.
type RegressionError struct {
	Message string
}

func (e *RegressionError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var regressionErr *RegressionError
		if errors.As(err, &regressionErr) {
			os.Exit(ExitRegression)
		}

		os.Exit(ExitError)
	}
}
