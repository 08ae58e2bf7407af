package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "luxeval",
		Short: "Luxeval - significance testing for machine translation systems",
		Long: `Luxeval compares machine translation systems scored on the same test set.

It runs a paired bootstrap test of every candidate against a baseline and
builds accuracy matrices telling how likely each pairwise score difference
reflects a real quality gap.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newThresholdsCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newCacheCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
