package main

import (
	"fmt"
	"path/filepath"

	"github.com/luxeval/luxeval/internal/cache"
	"github.com/luxeval/luxeval/internal/projectconfig"
	"github.com/spf13/cobra"
)

var cacheDir string

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the comparison outcome cache",
		Long: `Manage the comparison outcome cache.

The cache stores comparison outcomes to skip the bootstrap when the same
scores are compared again. Entries are keyed by the score document,
resampling settings, noise model and threshold profile.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the comparison outcome cache",
		Long: `Clear all cached comparison outcomes.

The next compare run with caching enabled recomputes everything.`,
		Args: cobra.NoArgs,
		RunE: cacheClearE,
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", projectconfig.DefaultCacheDir, "Cache directory to clear")

	return cmd
}

func cacheClearE(cmd *cobra.Command, _ []string) error {
	absDir, err := filepath.Abs(cacheDir)
	if err != nil {
		return fmt.Errorf("resolving cache directory: %w", err)
	}

	c := cache.New(absDir)
	if err := c.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", absDir)
	return nil
}
