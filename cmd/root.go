// Package cmd implements the coursewise CLI.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/coursewise/coursewise/internal/config"
	"github.com/coursewise/coursewise/internal/log"
)

var (
	flagVerbose bool
	flagJSONLog bool
)

var rootCmd = &cobra.Command{
	Use:   "coursewise",
	Short: "Course material question answering",
	Long: `Coursewise answers questions about indexed course materials.

The model decides per query whether to search course content, fetch a
course outline, or answer from general knowledge. Run "coursewise index"
to load course documents, then "coursewise serve" for the HTTP API or
"coursewise ask" for one-shot questions.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLog, "json-log", false, "log in JSON format")
}

// loadConfig loads configuration and builds the logger the commands share.
func loadConfig() (*config.Config, log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level, JSON: flagJSONLog})
	slog.SetDefault(logger)
	return cfg, logger, nil
}
