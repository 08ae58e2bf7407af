package main

import (
	"fmt"

	"github.com/luxeval/luxeval/internal/models"
	"github.com/luxeval/luxeval/internal/thresholds"
	"github.com/luxeval/luxeval/internal/validation"
	"github.com/spf13/cobra"
)

var validateKind string

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file> [file ...]",
		Short: "Validate score documents or threshold profiles",
		Long: `Validate files against the embedded JSON schemas.

Every violation is printed with its location in the document. The command
fails when any file is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: validateCommandE,
	}

	cmd.Flags().StringVarP(&validateKind, "kind", "k", string(validation.KindScores), "Document kind: scores or thresholds")

	return cmd
}

func validateCommandE(cmd *cobra.Command, args []string) error {
	kind := validation.Kind(validateKind)
	if kind != validation.KindScores && kind != validation.KindThresholds {
		return fmt.Errorf("unsupported kind %q: must be scores or thresholds", validateKind)
	}

	out := cmd.OutOrStdout()
	invalid := 0
	for _, path := range args {
		errs, err := validation.ValidateFile(path, kind)
		if err != nil {
			return err
		}
		if len(errs) == 0 {
			if err := checkSemantics(path, kind); err != nil {
				errs = append(errs, err.Error())
			}
		}
		if len(errs) == 0 {
			fmt.Fprintf(out, "✅ %s\n", path)
			continue
		}
		invalid++
		fmt.Fprintf(out, "❌ %s\n", path)
		for _, e := range errs {
			fmt.Fprintf(out, "   %s\n", e)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", invalid, len(args))
	}
	return nil
}

// checkSemantics applies the rules a schema cannot express, such as a
// baseline naming one of the systems.
func checkSemantics(path string, kind validation.Kind) error {
	var err error
	switch kind {
	case validation.KindScores:
		_, err = models.LoadScores(path)
	case validation.KindThresholds:
		_, err = thresholds.LoadFile(path)
	}
	return err
}
