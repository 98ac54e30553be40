package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coursewise/coursewise/internal/app"
)

var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Index course documents into the knowledge store",
	Long: `Index parses every course document (.txt, .md) in the given
directory, embeds its content, and stores it for retrieval. Courses whose
title is already indexed are skipped, so re-running is safe. The directory
defaults to the configured docs directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		return runIndex(cmd.Context(), dir)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(ctx context.Context, dir string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.DocsDir
	}

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	stats, err := a.Indexer.IndexDirectory(ctx, dir)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", dir, err)
	}

	fmt.Printf("Indexed %d courses (%d chunks), skipped %d already-indexed\n",
		stats.Courses, stats.Chunks, stats.Skipped)
	return nil
}
