// Package main provides the entry point for the career agent HTTP server and CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/career-agent/internal/config"
	"github.com/jonathan/career-agent/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "career_agent",
	Short:         "Career Agent HTTP API server and tools",
	Long:          "Career Agent diagnoses resumes against job descriptions, rewrites them, runs mock interviews and edits resumes through a confirm-before-apply copilot.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
}

// loadConfig reads configuration and builds the process logger from it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.NewLogger(cfg.Log, nil)
	slog.SetDefault(log)
	return cfg, log, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
